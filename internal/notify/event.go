package notify

// Event is one order lifecycle notification. It carries the marketplace
// fields each sender needs to render its own channel format; senders never
// receive pre-flattened text.
type Event struct {
	Name       string // bus event name, e.g. "order_requested"
	OrderID    string
	ListingID  string
	BuyerID    string
	SellerID   string
	Status     string
	OfferPrice string // decimal string, empty until quoted
}

var eventTitles = map[string]string{
	"order_requested": "New order",
	"quote_provided":  "Quote provided",
	"order_accepted":  "Order accepted",
	"order_rejected":  "Order rejected",
	"order_completed": "Order completed",
	"order_cancelled": "Order cancelled",
}

// Title returns the human-readable headline for the event.
func (e Event) Title() string {
	if t, ok := eventTitles[e.Name]; ok {
		return t
	}
	return "Order update"
}
