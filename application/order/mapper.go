package order

import (
	domainorder "github.com/gmartincasals/clean-orders/domain/order"
	"github.com/gmartincasals/clean-orders/domain/shared"
)

func moneyView(m shared.Money) MoneyView {
	return MoneyView{Amount: m.Amount(), Currency: m.Currency().Code()}
}

// buildView projects an aggregate into the order-view shape the HTTP layer
// serializes (§6). When the total cannot be computed (no items, or items
// spanning more than one currency), the view falls back to {amount:0,
// currency:"USD"} rather than surfacing an error — this mirrors the HTTP
// contract, not the repository's own on-empty persistence default (Q3),
// which is a separate, coincidentally identical convention.
func buildView(o *domainorder.Order) ([]ItemView, MoneyView) {
	items := o.Items()
	views := make([]ItemView, len(items))
	for i, item := range items {
		subtotal, err := item.Subtotal()
		sv := MoneyView{Currency: item.UnitPrice().Currency().Code()}
		if err == nil {
			sv = moneyView(subtotal)
		}
		views[i] = ItemView{
			ProductID: item.ProductID().String(),
			Quantity:  item.Quantity().Value(),
			UnitPrice: moneyView(item.UnitPrice()),
			Subtotal:  sv,
		}
	}

	total, err := o.CalculateTotal()
	if err != nil {
		return views, MoneyView{Amount: 0, Currency: "USD"}
	}
	return views, moneyView(total)
}
