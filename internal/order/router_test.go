package order

import (
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		side      enum.OrderSide
		requested float64
		market    float64
		want      enum.OrderKind
	}{
		{"buy at market", enum.OrderSideBuy, 100, 100, enum.OrderKindMarket},
		{"buy below market", enum.OrderSideBuy, 95, 100, enum.OrderKindLimit},
		{"buy above market", enum.OrderSideBuy, 105, 100, enum.OrderKindStop},
		{"sell at market", enum.OrderSideSell, 100, 100, enum.OrderKindMarket},
		{"sell above market", enum.OrderSideSell, 105, 100, enum.OrderKindLimit},
		{"sell below market", enum.OrderSideSell, 95, 100, enum.OrderKindStop},
	}
	for _, c := range cases {
		if got := Classify(c.side, c.requested, c.market); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestNewRejectsNonPositive(t *testing.T) {
	if _, err := New(enum.OrderSideBuy, 0, 100, 100, 1); err != ErrInvalidOrder {
		t.Fatalf("zero qty: got %v want ErrInvalidOrder", err)
	}
	if _, err := New(enum.OrderSideBuy, 1, -5, 100, 1); err != ErrInvalidOrder {
		t.Fatalf("negative price: got %v want ErrInvalidOrder", err)
	}
}

func TestNewAssignsIdentityAndStatus(t *testing.T) {
	o, err := New(enum.OrderSideSell, 2, 110, 100, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.ID == "" {
		t.Fatal("order must carry an ID")
	}
	if o.Status != enum.OrderStatusPending {
		t.Fatalf("status: got %v want pending", o.Status)
	}
	if o.Kind != enum.OrderKindLimit {
		t.Fatalf("kind: got %v want limit", o.Kind)
	}
	if o.SubmittedAt != 42 {
		t.Fatalf("submittedAt: got %d want 42", o.SubmittedAt)
	}
}

func TestFillsWithin(t *testing.T) {
	limitBuy := model.Order{Side: enum.OrderSideBuy, Kind: enum.OrderKindLimit, Price: 95}
	if FillsWithin(limitBuy, 96, 104) {
		t.Fatal("limit buy above the candle low must rest")
	}
	if !FillsWithin(limitBuy, 94, 104) {
		t.Fatal("limit buy must fill once the low trades through it")
	}

	stopBuy := model.Order{Side: enum.OrderSideBuy, Kind: enum.OrderKindStop, Price: 105}
	if FillsWithin(stopBuy, 96, 104) {
		t.Fatal("stop buy below the candle high must rest")
	}
	if !FillsWithin(stopBuy, 96, 106) {
		t.Fatal("stop buy must trigger once the high trades through it")
	}

	limitSell := model.Order{Side: enum.OrderSideSell, Kind: enum.OrderKindLimit, Price: 105}
	if !FillsWithin(limitSell, 96, 106) {
		t.Fatal("limit sell must fill once the high trades through it")
	}

	market := model.Order{Side: enum.OrderSideBuy, Kind: enum.OrderKindMarket, Price: 100}
	if !FillsWithin(market, 0, 0) {
		t.Fatal("market orders always fill")
	}
}
