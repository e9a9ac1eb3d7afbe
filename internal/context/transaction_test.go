package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTransactionContext(t *testing.T) {
	ctx := context.Background()

	_, ok := GetTransaction(ctx)
	assert.False(t, ok)

	tx := &gorm.DB{}
	got, ok := GetTransaction(WithTransaction(ctx, tx))
	assert.True(t, ok)
	assert.Same(t, tx, got)

	_, ok = GetTransaction(WithTransaction(ctx, nil))
	assert.False(t, ok)
}
