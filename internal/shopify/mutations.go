package shopify

const cartFields = `
      cart {
        id
        checkoutUrl
        totalQuantity
        cost {
          subtotalAmount {
            amount
            currencyCode
          }
        }
      }
      userErrors {
        field
        message
      }`

// CartCreateMutation creates a cart; the buyer completes payment on its checkoutUrl
const CartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {` + cartFields + `
  }
}
`

// CartLinesAddMutation adds lines to an existing cart
const CartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {` + cartFields + `
  }
}
`

// CartLineInput represents a line in cartCreate/cartLinesAdd
type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

// CartInput represents the input for cartCreate
type CartInput struct {
	Lines []CartLineInput `json:"lines"`
}
