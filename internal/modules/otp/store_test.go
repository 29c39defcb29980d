package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ConsumeIsSingleUse(t *testing.T) {
	store := NewStore()
	store.Put("sms:9876543210", "123456")

	assert.True(t, store.Consume("sms:9876543210", "123456"))
	assert.False(t, store.Consume("sms:9876543210", "123456"), "a consumed code must not verify twice")
}

func TestStore_WrongCodeKeepsEntry(t *testing.T) {
	store := NewStore()
	store.Put("sms:9876543210", "123456")

	assert.False(t, store.Consume("sms:9876543210", "000000"))
	assert.True(t, store.Consume("sms:9876543210", "123456"), "a failed attempt must not burn the code")
}

func TestStore_ExpiredCodeRejected(t *testing.T) {
	store := NewStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Put("email:a@example.com", "654321")

	store.now = func() time.Time { return now.Add(codeTTL + time.Second) }
	assert.False(t, store.Consume("email:a@example.com", "654321"))
}

func TestStore_PutReplacesPendingCode(t *testing.T) {
	store := NewStore()
	store.Put("sms:9876543210", "111111")
	store.Put("sms:9876543210", "222222")

	assert.False(t, store.Consume("sms:9876543210", "111111"))
	assert.True(t, store.Consume("sms:9876543210", "222222"))
}

func TestStore_SweepDropsOnlyExpired(t *testing.T) {
	store := NewStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Put("sms:old", "111111")

	store.now = func() time.Time { return now.Add(codeTTL / 2) }
	store.Put("sms:fresh", "222222")

	store.now = func() time.Time { return now.Add(codeTTL + time.Second) }
	store.Sweep()

	assert.False(t, store.Consume("sms:old", "111111"))
	assert.True(t, store.Consume("sms:fresh", "222222"))
}

func TestGenerateCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9')
		}
	}
}
