package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servo-saver/servo-saver-api/internal/models"
)

// PlaceSearcher is satisfied by internal.Geocoder.
type PlaceSearcher interface {
	Search(query string) ([]models.GeocodeResult, error)
}

// Geocode handles GET /v1/fuel-prices/geocode, resolving a free-text
// place query to candidate coordinates.
func Geocode(geocoder PlaceSearcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
			return
		}

		results, err := geocoder.Search(query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
