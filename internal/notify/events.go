package notify

// OrderPlacedItem is one resolved line of a committed order.
type OrderPlacedItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// OrderPlaced is emitted after an order commit.
type OrderPlaced struct {
	OrderID          uint              `json:"order_id"`
	CustomerName     string            `json:"customer_name"`
	CustomerUsername string            `json:"customer_username"`
	CustomerAddress  string            `json:"customer_address"`
	Comment          string            `json:"comment"`
	Items            []OrderPlacedItem `json:"items"`
}

// BroadcastBatch is one batch in a new-inventory announcement.
type BroadcastBatch struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	ImageURL    string  `json:"image_url"`
}

// NewInventoryBroadcast is emitted when fresh stock should be announced to
// subscribers.
type NewInventoryBroadcast struct {
	Batches []BroadcastBatch `json:"batches"`
}
