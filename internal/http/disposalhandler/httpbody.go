package disposalhandler

type SubmitDisposalBody struct {
	VehicleID      string  `json:"vehicle_id"       binding:"required"       example:"veh123"`
	RequesterID    string  `json:"requester_id"     binding:"required"       example:"usr456"`
	Reason         string  `json:"reason"           binding:"required"       example:"end_of_life"`
	Method         string  `json:"recommended_method" binding:"required"     example:"auction"`
	Condition      string  `json:"condition_rating" binding:"required"       example:"fair"`
	Mileage        int64   `json:"mileage"          binding:"gte=0"          example:"182000"`
	EstimatedValue float64 `json:"estimated_value"  binding:"gte=0"          example:"100000"`
} // @name SubmitDisposalRequest

type RejectDisposalBody struct {
	Reason string `json:"reason" binding:"required" example:"asset still serviceable"`
} // @name RejectDisposalRequest

type ListDisposalsQuery struct {
	Status string `form:"status" binding:"omitempty"`
	Limit  int    `form:"limit,default=10"  binding:"gte=0,lte=100"`
	Offset int    `form:"offset,default=0"  binding:"gte=0"`
} // @name ListDisposalsQuery
