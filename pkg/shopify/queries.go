// ABOUTME: Schema and instance lookups backing type resolution
// ABOUTME: Implements the metafield package's lookup collaborator contracts

package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nainya/metawrite/pkg/metafield"
)

const metafieldDefinitionQuery = `
query metafieldDefinition($namespace: String!, $key: String!) {
	metafieldDefinitions(namespace: $namespace, keys: [$key], ownerType: PRODUCT, first: 1) {
		edges {
			node {
				id
				name
				namespace
				key
				type {
					name
				}
			}
		}
	}
}`

const productMetafieldQuery = `
query productMetafield($ownerId: ID!, $namespace: String!, $key: String!) {
	product(id: $ownerId) {
		metafield(namespace: $namespace, key: $key) {
			id
			namespace
			key
			type
			value
			updatedAt
		}
	}
}`

// FetchDefinition looks up the schema-level metafield definition for a
// namespace and key. Returns (nil, nil) when no definition exists.
func (c *Client) FetchDefinition(ctx context.Context, namespace, key string) (*metafield.Definition, error) {
	data, err := c.Execute(ctx, metafieldDefinitionQuery, map[string]any{
		"namespace": namespace,
		"key":       key,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		MetafieldDefinitions struct {
			Edges []struct {
				Node struct {
					ID        string `json:"id"`
					Name      string `json:"name"`
					Namespace string `json:"namespace"`
					Key       string `json:"key"`
					Type      struct {
						Name string `json:"name"`
					} `json:"type"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"metafieldDefinitions"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("shopify: decode definition response: %w", err)
	}

	edges := payload.MetafieldDefinitions.Edges
	if len(edges) == 0 {
		return nil, nil
	}

	node := edges[0].Node
	t, err := metafield.ParseType(node.Type.Name)
	if err != nil {
		return nil, fmt.Errorf("shopify: definition %s.%s: %w", namespace, key, err)
	}

	return &metafield.Definition{
		ID:        node.ID,
		Namespace: node.Namespace,
		Key:       node.Key,
		Name:      node.Name,
		Type:      t,
	}, nil
}

// FetchMetafield looks up the metafield currently stored on a product.
// Returns (nil, nil) when the product has no such metafield.
func (c *Client) FetchMetafield(ctx context.Context, ownerID, namespace, key string) (*metafield.Metafield, error) {
	data, err := c.Execute(ctx, productMetafieldQuery, map[string]any{
		"ownerId":   ownerID,
		"namespace": namespace,
		"key":       key,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Product *struct {
			Metafield *struct {
				ID        string `json:"id"`
				Namespace string `json:"namespace"`
				Key       string `json:"key"`
				Type      string `json:"type"`
				Value     string `json:"value"`
				UpdatedAt string `json:"updatedAt"`
			} `json:"metafield"`
		} `json:"product"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("shopify: decode metafield response: %w", err)
	}

	if payload.Product == nil || payload.Product.Metafield == nil {
		return nil, nil
	}

	node := payload.Product.Metafield
	t, err := metafield.ParseType(node.Type)
	if err != nil {
		return nil, fmt.Errorf("shopify: metafield %s.%s on %s: %w", namespace, key, ownerID, err)
	}

	mf := &metafield.Metafield{
		ID:        node.ID,
		Namespace: node.Namespace,
		Key:       node.Key,
		Type:      t,
		Value:     node.Value,
	}
	if ts, err := time.Parse(time.RFC3339, node.UpdatedAt); err == nil {
		mf.UpdatedAt = ts
	}
	return mf, nil
}
