package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/pallet-shop/internal/cart/core/domain"
	"github.com/jcmexdev/pallet-shop/internal/cart/infra/store"
	"github.com/jcmexdev/pallet-shop/internal/pkg/kv"
)

type checkoutTestContext struct {
	store     *store.CartStore
	transport *fakeTransport
	renderer  *fakeRenderer
	notices   *noticeBoard
	form      *form
	sink      *memorySink
	buyer     domain.Buyer
	result    Result
}

func (c *checkoutTestContext) reset() {
	c.store = store.New(kv.NewMemory(), "feature")
	c.transport = &fakeTransport{}
	c.renderer = &fakeRenderer{}
	c.notices = &noticeBoard{}
	c.form = &form{}
	c.sink = &memorySink{}
	c.buyer = domain.Buyer{}
	c.result = Result{}
}

// Given steps

func (c *checkoutTestContext) theBuyer(name, email, phone, address string) error {
	c.buyer = domain.Buyer{Name: name, Email: email, Phone: phone, Address: address}
	c.form.fields = c.buyer
	return nil
}

func (c *checkoutTestContext) theCartHolds(qty int, name, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	return c.store.Save(context.Background(), domain.Cart{Items: []domain.CartItem{{Name: name, Price: p, Quantity: qty}}})
}

func (c *checkoutTestContext) theOrderEndpointIsUnreachable() error {
	c.transport.err = errors.New("dial tcp: connection refused")
	return nil
}

// When steps

func (c *checkoutTestContext) theBuyerSubmits() error {
	p := NewPipeline(c.transport, c.renderer)
	c.result, _ = p.Submit(context.Background(), Session{
		CartKey:  c.store.Key(),
		Store:    c.store,
		Notices:  c.notices,
		Form:     c.form,
		Receipts: c.sink,
	}, c.buyer)
	return nil
}

// Then steps

func (c *checkoutTestContext) theAttemptEndsInState(state string) error {
	if string(c.result.State) != state {
		return fmt.Errorf("expected state %q, got %q", state, c.result.State)
	}
	return nil
}

func (c *checkoutTestContext) theEndpointReceived(total, summary string) error {
	if len(c.transport.payloads) != 1 {
		return fmt.Errorf("expected 1 request, got %d", len(c.transport.payloads))
	}
	sent := c.transport.payloads[0]
	if want := decimal.RequireFromString(total); !sent.Total.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, sent.Total)
	}
	if sent.OrderSummary != summary {
		return fmt.Errorf("expected summary %q, got %q", summary, sent.OrderSummary)
	}
	return nil
}

func (c *checkoutTestContext) theEndpointReceivedNothing() error {
	if n := c.transport.calls(); n != 0 {
		return fmt.Errorf("expected no request, got %d", n)
	}
	return nil
}

func (c *checkoutTestContext) theNoticeIsShown(msg string) error {
	all := append(append(append([]string{}, c.notices.warnings...), c.notices.confirms...), c.notices.errs...)
	if !slices.Contains(all, msg) {
		return fmt.Errorf("notice %q not shown, got %v", msg, all)
	}
	return nil
}

func (c *checkoutTestContext) aReceiptWasGenerated() error {
	if len(c.sink.docs) != 1 {
		return fmt.Errorf("expected 1 receipt, got %d", len(c.sink.docs))
	}
	return nil
}

func (c *checkoutTestContext) noReceiptWasGenerated() error {
	if len(c.sink.docs) != 0 || len(c.renderer.rendered) != 0 {
		return errors.New("expected no receipt")
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	cart, err := c.store.Load(context.Background())
	if err != nil {
		return err
	}
	if !cart.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d items", cart.Len())
	}
	return nil
}

func (c *checkoutTestContext) theCartStillHolds(qty int, name string) error {
	cart, err := c.store.Load(context.Background())
	if err != nil {
		return err
	}
	i := cart.IndexOf(name)
	if i < 0 || cart.Items[i].Quantity != qty {
		return fmt.Errorf("expected %d of %q in %+v", qty, name, cart.Items)
	}
	return nil
}

func (c *checkoutTestContext) theFormWasReset() error {
	if c.form.resets != 1 || c.form.fields != (domain.Buyer{}) {
		return errors.New("expected the form to be reset")
	}
	return nil
}

func (c *checkoutTestContext) theFormWasNotReset() error {
	if c.form.resets != 0 || c.form.fields != c.buyer {
		return errors.New("expected the form to keep its fields")
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the buyer "([^"]*)" with email "([^"]*)", phone "([^"]*)" and address "([^"]*)"$`, tc.theBuyer)
	ctx.Step(`^the cart holds (\d+) of "([^"]*)" at ([\d.]+)$`, tc.theCartHolds)
	ctx.Step(`^the order endpoint is unreachable$`, tc.theOrderEndpointIsUnreachable)

	ctx.Step(`^the buyer submits the checkout form$`, tc.theBuyerSubmits)

	ctx.Step(`^the attempt ends in state "([^"]*)"$`, tc.theAttemptEndsInState)
	ctx.Step(`^the order endpoint received total ([\d.]+) and summary "([^"]*)"$`, tc.theEndpointReceived)
	ctx.Step(`^the order endpoint received nothing$`, tc.theEndpointReceivedNothing)
	ctx.Step(`^the notice "([^"]*)" is shown$`, tc.theNoticeIsShown)
	ctx.Step(`^a receipt was generated$`, tc.aReceiptWasGenerated)
	ctx.Step(`^no receipt was generated$`, tc.noReceiptWasGenerated)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart still holds (\d+) of "([^"]*)"$`, tc.theCartStillHolds)
	ctx.Step(`^the form was reset$`, tc.theFormWasReset)
	ctx.Step(`^the form was not reset$`, tc.theFormWasNotReset)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
