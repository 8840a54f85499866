package response

type GoodsResponse struct {
	GoodsSold []string `json:"goodsSold"`
}
