package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus is the lifecycle state of an order. Stored documents use the
// capitalised label ("Delivered"); parsing accepts any casing.
type OrderStatus int

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusProcessing
	OrderStatusPlaced
	OrderStatusApproved
	OrderStatusPacked
	OrderStatusShipped
	OrderStatusDelivered
	OrderStatusDeclined
	OrderStatusCancelled
)

var orderStatusLabels = [...]string{
	OrderStatusUnknown:    "Unknown",
	OrderStatusProcessing: "Processing",
	OrderStatusPlaced:     "Placed",
	OrderStatusApproved:   "Approved",
	OrderStatusPacked:     "Packed",
	OrderStatusShipped:    "Shipped",
	OrderStatusDelivered:  "Delivered",
	OrderStatusDeclined:   "Declined",
	OrderStatusCancelled:  "Cancelled",
}

func (s OrderStatus) String() string {
	if s < 0 || int(s) >= len(orderStatusLabels) {
		return orderStatusLabels[OrderStatusUnknown]
	}
	return orderStatusLabels[s]
}

// Key is the upper-cased form used by status badges.
func (s OrderStatus) Key() string {
	return strings.ToUpper(s.String())
}

// ShowsTracking reports whether a shipment exists for orders in this state.
func (s OrderStatus) ShowsTracking() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

// Final reports whether no further transitions are expected.
func (s OrderStatus) Final() bool {
	return s == OrderStatusDelivered || s == OrderStatusDeclined || s == OrderStatusCancelled
}

// ParseOrderStatus maps a stored status string onto the enum. An empty
// string is Processing; anything unrecognised is an error.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	key := strings.ToUpper(strings.TrimSpace(raw))
	if key == "" {
		return OrderStatusProcessing, nil
	}
	for i, label := range orderStatusLabels {
		if i == int(OrderStatusUnknown) {
			continue
		}
		if strings.ToUpper(label) == key {
			return OrderStatus(i), nil
		}
	}
	return OrderStatusUnknown, fmt.Errorf("unknown order status %q", raw)
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		*s = OrderStatusUnknown
		return nil
	}
	*s = parsed
	return nil
}

// OrdersWithStatus keeps the orders whose decoded status is status. Stores
// filter here rather than on the raw label, which may be in any casing.
func OrdersWithStatus(orders []Order, status OrderStatus) []Order {
	var out []Order
	for _, o := range orders {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
