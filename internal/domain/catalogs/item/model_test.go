package item

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbooks/internal/core/apperror"
	"finbooks/internal/core/types"
)

func TestItem_Validate(t *testing.T) {
	ctx := context.Background()

	it := NewItem("WIDGET", "Widget", TypeGoods)
	it.GSTRate = types.MustMoney("18")
	require.NoError(t, it.Validate(ctx))

	svc := NewItem("CONSULT", "Consulting", TypeService)
	require.NoError(t, svc.Validate(ctx))
}

func TestItem_Validate_Type(t *testing.T) {
	ctx := context.Background()

	it := NewItem("WIDGET", "Widget", "bundle")
	err := it.Validate(ctx)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.GetCode(err))

	it = NewItem("WIDGET", "Widget", "")
	require.Error(t, it.Validate(ctx))
}

func TestItem_Validate_Bounds(t *testing.T) {
	ctx := context.Background()

	it := NewItem("WIDGET", "Widget", TypeGoods)
	it.SalesPrice = types.MustMoney("-1")
	require.Error(t, it.Validate(ctx))

	it = NewItem("WIDGET", "Widget", TypeGoods)
	it.GSTRate = types.MustMoney("101")
	require.Error(t, it.Validate(ctx))

	svc := NewItem("CONSULT", "Consulting", TypeService)
	svc.TrackStock = true
	require.Error(t, svc.Validate(ctx))
}

func TestItem_MovesStock(t *testing.T) {
	goods := NewItem("WIDGET", "Widget", TypeGoods)
	goods.TrackStock = true
	assert.True(t, goods.MovesStock())

	goods.TrackStock = false
	assert.False(t, goods.MovesStock())

	svc := NewItem("CONSULT", "Consulting", TypeService)
	assert.False(t, svc.MovesStock())
}
