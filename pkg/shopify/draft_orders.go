package shopify

import (
	"context"
	"errors"
	"fmt"
)

// ErrDraftOrderNotFound is returned when the Admin API resolves the id to
// nothing (null node), as opposed to the call itself failing.
var ErrDraftOrderNotFound = errors.New("draft order not found")

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type LineItem struct {
	Title            string      `json:"title"`
	Quantity         int         `json:"quantity"`
	CustomAttributes []Attribute `json:"customAttributes"`
}

type DraftOrder struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	Email      string     `json:"email"`
	Note       string     `json:"note2"`
	InvoiceURL string     `json:"invoiceUrl"`
	TotalPrice string     `json:"totalPrice"`
	LineItems  []LineItem `json:"-"`
}

// DraftOrderLineItemInput is a custom (no variant) line item. Shopify accepts
// decimals as strings for originalUnitPrice.
type DraftOrderLineItemInput struct {
	Title             string      `json:"title"`
	Quantity          int         `json:"quantity"`
	OriginalUnitPrice string      `json:"originalUnitPrice,omitempty"`
	CustomAttributes  []Attribute `json:"customAttributes,omitempty"`
}

type DraftOrderInput struct {
	Email     string                    `json:"email,omitempty"`
	Note      string                    `json:"note,omitempty"`
	Tags      []string                  `json:"tags,omitempty"`
	LineItems []DraftOrderLineItemInput `json:"lineItems,omitempty"`
}

const draftOrderQuery = `
query DraftOrder($id: ID!) {
  draftOrder(id: $id) {
    id
    name
    status
    email
    note2
    invoiceUrl
    totalPrice
    lineItems(first: 50) {
      edges {
        node {
          title
          quantity
          customAttributes {
            key
            value
          }
        }
      }
    }
  }
}
`

// GetDraftOrder fetches a draft order with its first 50 line items and their
// custom attributes. Returns ErrDraftOrderNotFound when the id resolves to
// nothing.
func (c Client) GetDraftOrder(ctx context.Context, id string) (*DraftOrder, error) {
	var data struct {
		DraftOrder *struct {
			DraftOrder
			LineItems struct {
				Edges []struct {
					Node LineItem `json:"node"`
				} `json:"edges"`
			} `json:"lineItems"`
		} `json:"draftOrder"`
	}

	err := c.gql(ctx, draftOrderQuery, map[string]any{"id": DraftOrderGID(id)}, &data)
	if err != nil {
		return nil, err
	}
	if data.DraftOrder == nil {
		return nil, ErrDraftOrderNotFound
	}

	out := data.DraftOrder.DraftOrder
	for _, e := range data.DraftOrder.LineItems.Edges {
		out.LineItems = append(out.LineItems, e.Node)
	}
	return &out, nil
}

const draftOrderCreateMutation = `
mutation DraftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder {
      id
      name
      invoiceUrl
    }
    userErrors {
      field
      message
    }
  }
}
`

func (c Client) CreateDraftOrder(ctx context.Context, input DraftOrderInput) (*DraftOrder, error) {
	var data struct {
		DraftOrderCreate struct {
			DraftOrder *DraftOrder `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderCreate"`
	}

	err := c.gql(ctx, draftOrderCreateMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	if len(data.DraftOrderCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("draftOrderCreate user error: %s", data.DraftOrderCreate.UserErrors[0].Message)
	}
	if data.DraftOrderCreate.DraftOrder == nil || data.DraftOrderCreate.DraftOrder.ID == "" {
		return nil, fmt.Errorf("draftOrderCreate returned empty draft order")
	}
	return data.DraftOrderCreate.DraftOrder, nil
}

const draftOrderUpdateMutation = `
mutation DraftOrderUpdate($id: ID!, $input: DraftOrderInput!) {
  draftOrderUpdate(id: $id, input: $input) {
    draftOrder {
      id
      name
      invoiceUrl
    }
    userErrors {
      field
      message
    }
  }
}
`

func (c Client) UpdateDraftOrder(ctx context.Context, id string, input DraftOrderInput) (*DraftOrder, error) {
	var data struct {
		DraftOrderUpdate struct {
			DraftOrder *DraftOrder `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderUpdate"`
	}

	err := c.gql(ctx, draftOrderUpdateMutation, map[string]any{
		"id":    DraftOrderGID(id),
		"input": input,
	}, &data)
	if err != nil {
		return nil, err
	}
	if len(data.DraftOrderUpdate.UserErrors) > 0 {
		return nil, fmt.Errorf("draftOrderUpdate user error: %s", data.DraftOrderUpdate.UserErrors[0].Message)
	}
	if data.DraftOrderUpdate.DraftOrder == nil {
		return nil, ErrDraftOrderNotFound
	}
	return data.DraftOrderUpdate.DraftOrder, nil
}

const draftOrderInvoiceSendMutation = `
mutation DraftOrderInvoiceSend($id: ID!, $email: EmailInput) {
  draftOrderInvoiceSend(id: $id, email: $email) {
    draftOrder {
      id
      invoiceSentAt
    }
    userErrors {
      field
      message
    }
  }
}
`

type InvoiceEmail struct {
	To            string `json:"to,omitempty"`
	Subject       string `json:"subject,omitempty"`
	CustomMessage string `json:"customMessage,omitempty"`
}

// SendDraftOrderInvoice emails the draft order invoice. A nil email sends
// Shopify's default invoice to the order's customer.
func (c Client) SendDraftOrderInvoice(ctx context.Context, id string, email *InvoiceEmail) (sentAt string, err error) {
	var data struct {
		DraftOrderInvoiceSend struct {
			DraftOrder *struct {
				ID            string `json:"id"`
				InvoiceSentAt string `json:"invoiceSentAt"`
			} `json:"draftOrder"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"draftOrderInvoiceSend"`
	}

	vars := map[string]any{"id": DraftOrderGID(id)}
	if email != nil {
		vars["email"] = email
	}
	if err := c.gql(ctx, draftOrderInvoiceSendMutation, vars, &data); err != nil {
		return "", err
	}
	if len(data.DraftOrderInvoiceSend.UserErrors) > 0 {
		return "", fmt.Errorf("draftOrderInvoiceSend user error: %s", data.DraftOrderInvoiceSend.UserErrors[0].Message)
	}
	if data.DraftOrderInvoiceSend.DraftOrder == nil {
		return "", ErrDraftOrderNotFound
	}
	return data.DraftOrderInvoiceSend.DraftOrder.InvoiceSentAt, nil
}

type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}
