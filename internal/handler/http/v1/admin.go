package v1

import (
	"net/http"
	"strconv"

	"github.com/aksbond/Emergency-SOS/internal/service"
	"github.com/gin-gonic/gin"
)

// listQueryFromContext собирает фильтры консоли из query-параметров
func listQueryFromContext(c *gin.Context) service.ListQuery {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return service.ListQuery{
		TypeCode:    c.Query("type_code"),
		SubTypeCode: c.Query("subtype_code"),
		Start:       c.Query("start"),
		End:         c.Query("end"),
		Limit:       limit,
	}
}

// @Summary Review console
// @Description Review console data: filtered emergency requests with decrypted names, newest first. Requires basic auth, passes the admin rate limiter and the IP allowlist.
// @Tags Admin
// @Produce json
// @Security BasicAuth
// @Param type_code query string false "Type code filter"
// @Param subtype_code query string false "Subtype code filter"
// @Param start query string false "Inclusive start bound, format 2006-01-02T15:04"
// @Param end query string false "Inclusive end bound, format 2006-01-02T15:04"
// @Param limit query int false "Maximum rows, 0 = no cap"
// @Success 200 {array} RequestResponse
// @Failure 401 {object} map[string]string "Incorrect username or password"
// @Failure 403 {object} map[string]string "IP not allowlisted"
// @Failure 429 {object} map[string]string "Rate limited"
// @Failure 500 {object} map[string]string "Decryption failure or internal error"
// @Router /supersecretadmin [get]
func (h *Handler) adminConsole(c *gin.Context) {
	h.listRequests(c)
}

// @Summary List emergency requests
// @Description Filtered, time-ranged listing of the request ledger with decrypted names.
// @Tags Admin
// @Produce json
// @Security BasicAuth
// @Param type_code query string false "Type code filter"
// @Param subtype_code query string false "Subtype code filter"
// @Param start query string false "Inclusive start bound, format 2006-01-02T15:04"
// @Param end query string false "Inclusive end bound, format 2006-01-02T15:04"
// @Param limit query int false "Maximum rows, 0 = no cap"
// @Success 200 {array} RequestResponse
// @Failure 401 {object} map[string]string "Incorrect username or password"
// @Failure 500 {object} map[string]string "Decryption failure or internal error"
// @Router /admin/api/requests [get]
func (h *Handler) listRequests(c *gin.Context) {
	log := h.logger.WithField("method", "listRequests")

	requests, err := h.requestService.List(c.Request.Context(), listQueryFromContext(c))
	if err != nil {
		// Сбой расшифровки - это несоответствие ключей, оператор должен
		// увидеть ошибку, а не пустые имена
		log.WithError(err).Error("Failed to list requests")
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToRequestResponses(requests, true))
}

// @Summary List identities
// @Description List all known identities for the review console.
// @Tags Admin
// @Produce json
// @Security BasicAuth
// @Success 200 {array} UserResponse
// @Failure 401 {object} map[string]string "Incorrect username or password"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/api/users [get]
func (h *Handler) listUsers(c *gin.Context) {
	log := h.logger.WithField("method", "listUsers")

	users, err := h.identityService.ListUsers(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToUserResponses(users))
}

// @Summary List the request taxonomy
// @Description Public catalog of request types and subtypes.
// @Tags Taxonomy
// @Produce json
// @Success 200 {object} TaxonomyResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/api/types [get]
func (h *Handler) listTypes(c *gin.Context) {
	log := h.logger.WithField("method", "listTypes")

	types, err := h.taxonomyService.ListTypes(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list types")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	subTypes, err := h.taxonomyService.ListSubTypes(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list subtypes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, ModelsToTaxonomyResponse(types, subTypes))
}
