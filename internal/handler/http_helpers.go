package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// queryID reads the required ?id= parameter, answering 400 when it is absent.
func queryID(c *gin.Context, message string) (string, bool) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		respondError(c, http.StatusBadRequest, message)
		return "", false
	}
	return id, true
}

func (a *API) respondInternalError(c *gin.Context, err error, message string) {
	a.requestLogger(c).WithError(err).Error(message)
	respondError(c, http.StatusInternalServerError, err.Error())
}
