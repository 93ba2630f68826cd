package services_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/services"
)

func TestInvoice_Render(t *testing.T) {
	f, add := newOrderFixture(t)
	ctx := context.Background()
	p := add("p-a", "Café Crème", "4.20")
	c := &services.Cart{}
	c.Update(p.ID, "3")
	o, err := f.svc.Checkout(ctx, "u-alice", "sess-1", c, shipTo)
	require.NoError(t, err)

	inv := services.NewInvoiceService(f.svc, "https://shop.test")
	pdf, err := inv.Render(ctx, alice, o.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))

	_, err = inv.Render(ctx, bob, o.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
