package model

// 配送先住所
type ShippingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Phone   string `json:"phone"`
}

// Line は一覧表示用に1行にまとめる
func (a ShippingAddress) Line() string {
	out := a.Address
	for _, part := range []string{a.City, a.State, a.Pincode} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}
