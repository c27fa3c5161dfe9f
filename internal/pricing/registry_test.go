package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shopcore/internal/money"
)

func TestParseSpecs(t *testing.T) {
	specs := ParseSpecs(" base, tax:9000 ,discount:1000,, round:2 ")
	require.Equal(t, []HandlerSpec{
		{Name: "base"},
		{Name: "tax", Arg: "9000"},
		{Name: "discount", Arg: "1000"},
		{Name: "round", Arg: "2"},
	}, specs)
	require.Nil(t, ParseSpecs("  "))
}

func TestRegistryBuildPreservesOrder(t *testing.T) {
	reg := NewDefaultRegistry(plnSource())
	handlers, err := reg.Build(ParseSpecs("base,tax:9000,discount:1000"))
	require.NoError(t, err)
	require.Len(t, handlers, 3)

	chain := NewChain(handlers...)
	price, err := chain.VariantPrice(context.Background(), testVariant("shirt-m"), Context{Currency: "PLN", Discount: true})
	require.NoError(t, err)
	want, _ := money.Parse("4.5", "8.55", "PLN")
	require.True(t, price.Equal(want), "expected %s, got %s", want, price)
}

func TestRegistryUnknownHandler(t *testing.T) {
	reg := NewDefaultRegistry(plnSource())
	_, err := reg.Build([]HandlerSpec{{Name: "loyalty"}})
	require.ErrorIs(t, err, ErrUnknownHandler)
}

func TestRegistryRejectsMissingArg(t *testing.T) {
	reg := NewDefaultRegistry(plnSource())
	for _, spec := range []HandlerSpec{
		{Name: "tax"},
		{Name: "discount", Arg: "ten"},
		{Name: "round", Arg: ""},
	} {
		if _, err := reg.Build([]HandlerSpec{spec}); err == nil {
			t.Fatalf("expected build error for %+v", spec)
		}
	}
}

func TestRegisterOverride(t *testing.T) {
	reg := NewDefaultRegistry(plnSource())
	sentinel := errors.New("custom factory")
	reg.Register("tax", func(string) (Handler, error) { return nil, sentinel })
	_, err := reg.Build([]HandlerSpec{{Name: "TAX", Arg: "1"}})
	require.ErrorIs(t, err, sentinel)
}
