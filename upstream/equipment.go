package upstream

import (
	"context"
	"fmt"
	"net/url"
)

// SearchEquipment looks up equipment by tag fragment or description keyword.
// Equipment is owned by the asset registry; the dashboard never writes it.
func (c *Client) SearchEquipment(ctx context.Context, keyword string) ([]Equipment, error) {
	var items []Equipment
	path := "/equipment?search=" + url.QueryEscape(keyword)
	if err := c.get(ctx, path, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetEquipment(ctx context.Context, tag string) (*Equipment, error) {
	var item Equipment
	if err := c.get(ctx, fmt.Sprintf("/equipment/%s", url.PathEscape(tag)), &item); err != nil {
		return nil, err
	}
	return &item, nil
}
