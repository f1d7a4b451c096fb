package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servo-saver/servo-saver-api/internal/rewards"
)

// Programs handles GET /v1/fuel-prices/programs, listing the discount
// options and loyalty partnerships the search endpoint understands.
func Programs() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"discounts":    rewards.AvailableDiscounts(),
			"partnerships": rewards.Partnerships(),
		})
	}
}
