package controllers

import (
	"net/http"

	"kiranaledger/internal/models/request_models"
	"kiranaledger/internal/services"
	"kiranaledger/pkg/utils"

	"github.com/gin-gonic/gin"
)

type BatchController struct {
	aggregationService services.AggregationServiceInterface
}

func NewBatchController(aggregationService services.AggregationServiceInterface) *BatchController {
	return &BatchController{
		aggregationService: aggregationService,
	}
}

// CommitDailyBatch folds one shopkeeper-day of verified sales into a single
// content-hashed chain write; repeat calls for a committed day are rejected.
func (b *BatchController) CommitDailyBatch(c *gin.Context) {
	var request request_models.DailyBatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if _, err := utils.ParseBatchDate(request.Date); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	result, err := b.aggregationService.CommitDailyBatch(c.Request.Context(), request.ShopkeeperID, request.Date)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, result, "Daily batch queued for blockchain commit")
}
