package domain

type AddLineRequest struct {
	Identity string `json:"identity"`
	Category string `json:"category"`
	Item     string `json:"item"`
	// Raw quantity field; absent or unparseable values default to 1.
	Quantity string `json:"quantity,omitempty"`
}

type RemoveLineRequest struct {
	Identity string `json:"identity"`
	Index    string `json:"index"`
}

type CartView struct {
	Lines []CartLine `json:"lines"`
	Total int64      `json:"total"`
}

type SubmitOrderRequest struct {
	Identity string `json:"identity"`
}

type SubmitOrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Total   int64  `json:"total"`
}

type CooldownView struct {
	Active    bool   `json:"active"`
	Remaining string `json:"remaining,omitempty"` // hh:mm:ss
}

type SetStatusRequest struct {
	Identity string `json:"identity"`
	Status   string `json:"status"`
}
