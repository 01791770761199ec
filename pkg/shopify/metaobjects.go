package shopify

import (
	"context"
	"fmt"
)

// Metaobject is the subset of metaobject data the RFQ flow uses: uploaded
// file records keyed by handle, with url/file_id/data fields.
type Metaobject struct {
	ID     string
	Handle string
	Fields map[string]string
}

type metaobjectNode struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Fields []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	} `json:"fields"`
}

func (n *metaobjectNode) toMetaobject() *Metaobject {
	m := &Metaobject{ID: n.ID, Handle: n.Handle, Fields: map[string]string{}}
	for _, f := range n.Fields {
		m.Fields[f.Key] = f.Value
	}
	return m
}

const metaobjectByHandleQuery = `
query MetaobjectByHandle($handle: MetaobjectHandleInput!) {
  metaobjectByHandle(handle: $handle) {
    id
    handle
    fields {
      key
      value
    }
  }
}
`

// MetaobjectByHandle resolves one metaobject by exact handle. A missing
// record returns (nil, nil); only the call itself failing returns an error.
func (c Client) MetaobjectByHandle(ctx context.Context, mtype, handle string) (*Metaobject, error) {
	var data struct {
		MetaobjectByHandle *metaobjectNode `json:"metaobjectByHandle"`
	}
	err := c.gql(ctx, metaobjectByHandleQuery, map[string]any{
		"handle": map[string]any{"type": mtype, "handle": handle},
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.MetaobjectByHandle == nil {
		return nil, nil
	}
	return data.MetaobjectByHandle.toMetaobject(), nil
}

const metaobjectsQuery = `
query Metaobjects($type: String!, $first: Int!) {
  metaobjects(type: $type, first: $first) {
    edges {
      node {
        id
        handle
        fields {
          key
          value
        }
      }
    }
  }
}
`

// ListMetaobjects pages the first n records of a metaobject type. Used as a
// bounded fallback scan when the exact-handle lookup comes up empty.
func (c Client) ListMetaobjects(ctx context.Context, mtype string, first int) ([]*Metaobject, error) {
	if first <= 0 {
		first = 100
	}
	var data struct {
		Metaobjects struct {
			Edges []struct {
				Node metaobjectNode `json:"node"`
			} `json:"edges"`
		} `json:"metaobjects"`
	}
	err := c.gql(ctx, metaobjectsQuery, map[string]any{"type": mtype, "first": first}, &data)
	if err != nil {
		return nil, err
	}
	out := make([]*Metaobject, 0, len(data.Metaobjects.Edges))
	for i := range data.Metaobjects.Edges {
		out = append(out, data.Metaobjects.Edges[i].Node.toMetaobject())
	}
	return out, nil
}

const metaobjectCreateMutation = `
mutation MetaobjectCreate($metaobject: MetaobjectCreateInput!) {
  metaobjectCreate(metaobject: $metaobject) {
    metaobject {
      id
      handle
    }
    userErrors {
      field
      message
    }
  }
}
`

func (c Client) CreateMetaobject(ctx context.Context, mtype, handle string, fields map[string]string) (*Metaobject, error) {
	fieldInputs := make([]map[string]string, 0, len(fields))
	for k, v := range fields {
		fieldInputs = append(fieldInputs, map[string]string{"key": k, "value": v})
	}

	var data struct {
		MetaobjectCreate struct {
			Metaobject *struct {
				ID     string `json:"id"`
				Handle string `json:"handle"`
			} `json:"metaobject"`
			UserErrors []UserError `json:"userErrors"`
		} `json:"metaobjectCreate"`
	}
	err := c.gql(ctx, metaobjectCreateMutation, map[string]any{
		"metaobject": map[string]any{
			"type":   mtype,
			"handle": handle,
			"fields": fieldInputs,
		},
	}, &data)
	if err != nil {
		return nil, err
	}
	if len(data.MetaobjectCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("metaobjectCreate user error: %s", data.MetaobjectCreate.UserErrors[0].Message)
	}
	if data.MetaobjectCreate.Metaobject == nil {
		return nil, fmt.Errorf("metaobjectCreate returned empty metaobject")
	}
	return &Metaobject{
		ID:     data.MetaobjectCreate.Metaobject.ID,
		Handle: data.MetaobjectCreate.Metaobject.Handle,
		Fields: fields,
	}, nil
}
