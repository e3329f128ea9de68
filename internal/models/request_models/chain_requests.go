package request_models

type RegisterShopkeeperRequest struct {
	Address string `json:"address"`
	Name    string `json:"name" binding:"required"`
}

type UpdateCreditScoreRequest struct {
	Address string `json:"address" binding:"required"`
	Score   int64  `json:"score" binding:"min=0,max=100"`
}

type CreateCooperativeRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinCooperativeRequest struct {
	MemberAddress string `json:"member_address" binding:"required"`
}
