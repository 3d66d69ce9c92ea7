package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validReceipt() Receipt {
	return Receipt{
		Restaurant: "bella-vista",
		Items: []ReceiptItem{
			{Name: "Margherita", Price: 1200, Quantity: 2},
			{Name: "Tiramisu", Price: 700, Quantity: 1},
		},
		Subtotal: 3100,
		Tax:      310,
		Tip:      500,
		Total:    3910,
	}
}

func TestReceiptValidate(t *testing.T) {
	assert.NoError(t, validReceipt().Validate())
}

func TestReceiptValidate_TotalMismatch(t *testing.T) {
	r := validReceipt()
	r.Total = 4000
	assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
}

func TestReceiptValidate_NegativeAmounts(t *testing.T) {
	r := validReceipt()
	r.Tip = -100
	r.Total = r.Subtotal + r.Tax + r.Tip
	assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
}

func TestReceiptValidate_EmptyItems(t *testing.T) {
	r := validReceipt()
	r.Items = nil
	assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
}

func TestReceiptValidate_BadItem(t *testing.T) {
	r := validReceipt()
	r.Items[0].Quantity = 0
	assert.ErrorIs(t, r.Validate(), ErrInvalidInput)
}
