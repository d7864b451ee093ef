package Services

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Stockbook/Models"
)

func newRedisSequencer(t *testing.T) (*RedisSequencer, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSequencer(client), mr
}

func TestRedisSequencerSeedsAndIncrements(t *testing.T) {
	env := newTestEnv(t)
	seq, mr := newRedisSequencer(t)

	first, err := seq.Next(ctx(), env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(fallbackInvoiceNumber), first)

	second, err := seq.Next(ctx(), env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(fallbackInvoiceNumber+1), second)

	value, err := mr.Get("stockbook:sequence:invoice")
	require.NoError(t, err)
	assert.Equal(t, "1002", value)
}

func TestRedisSequencerSeedsFromExistingInvoices(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, "Widget", "parts")
	in := invoiceInput(Models.InvoiceItemInput{Product: p.ID, Quantity: 1, Price: 1})
	in.InvoiceNumber = "5000"
	_, err := env.invoices.Create(ctx(), in, nil)
	require.NoError(t, err)

	seq, _ := newRedisSequencer(t)
	next, err := seq.Next(ctx(), env.db)
	require.NoError(t, err)
	assert.Equal(t, int64(5001), next)
}

func TestRedisSequencerSkipsTakenNumbers(t *testing.T) {
	env := newTestEnv(t)
	p := env.product(t, "Widget", "parts")
	seq, mr := newRedisSequencer(t)
	env.invoices = NewInvoiceService(env.db, env.log, env.validator, seq)
	item := Models.InvoiceItemInput{Product: p.ID, Quantity: 1, Price: 1}

	first, err := env.invoices.Create(ctx(), invoiceInput(item), nil)
	require.NoError(t, err)
	assert.Equal(t, "1001", first.InvoiceNumber)

	manual := invoiceInput(item)
	manual.InvoiceNumber = "1002"
	_, err = env.invoices.Create(ctx(), manual, nil)
	require.NoError(t, err)

	next, err := env.invoices.Create(ctx(), invoiceInput(item), nil)
	require.NoError(t, err)
	assert.Equal(t, "1003", next.InvoiceNumber)

	value, err := mr.Get("stockbook:sequence:invoice")
	require.NoError(t, err)
	assert.Equal(t, "1003", value)
}

func TestRedisSequencerReportsUnavailableServer(t *testing.T) {
	env := newTestEnv(t)
	seq, mr := newRedisSequencer(t)
	mr.Close()

	_, err := seq.Next(ctx(), env.db)
	assert.Error(t, err)
}

func TestDBSequencerKeepsCounterRow(t *testing.T) {
	env := newTestEnv(t)
	seq := NewDBSequencer()

	for want := int64(1001); want <= 1003; want++ {
		got, err := seq.Next(ctx(), env.db)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	var row Models.NumberSequence
	require.NoError(t, env.db.First(&row, "name = ?", Models.InvoiceSequence).Error)
	assert.Equal(t, int64(1003), row.Value)
}
