package verification

import (
	"errors"
	"net/http"

	"passport-oracle/src/claims"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

// VerifyPassport godoc
// @Summary      Verify a passport claim
// @Description  Runs the full check suite, signs the outcome and registers valid claims
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        body  body      verification.VerifyRequest  true  "Passport claim"
// @Success      200  {object}  verification.VerifyResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/verification [post]
func (h *Handler) VerifyPassport(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	resp, err := h.Service.Verify(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, claims.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Verification failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyBatch godoc
// @Summary      Verify a batch of passport claims
// @Description  Verifies each claim and signs one digest covering the whole batch
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        body  body      []verification.VerifyRequest  true  "Passport claims"
// @Success      200  {object}  verification.BatchVerifyResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/verification/batch [post]
func (h *Handler) VerifyBatch(c *gin.Context) {
	var reqs []VerifyRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if len(reqs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty batch"})
		return
	}

	resp, err := h.Service.VerifyBatch(c.Request.Context(), reqs)
	if err != nil {
		if errors.Is(err, claims.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch verification failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterWithProof godoc
// @Summary      Register via checksum proof
// @Description  Proves the MRZ check digits in zero knowledge and registers the claim
// @Tags         Registry
// @Accept       json
// @Produce      json
// @Param        body  body      object{passport_number=string,birth_date=string,expiry_date=string,nationality=string,nfc_signature_valid=bool}  true  "Passport claim"
// @Success      201  {object}  verification.VerifyResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /v1/registry/proof [post]
func (h *Handler) RegisterWithProof(c *gin.Context) {
	var req struct {
		PassportNumber    string `json:"passport_number"`
		BirthDate         string `json:"birth_date"`
		ExpiryDate        string `json:"expiry_date"`
		Nationality       string `json:"nationality"`
		NfcSignatureValid bool   `json:"nfc_signature_valid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	resp, err := h.Service.RegisterWithProof(claims.PassportClaim{
		Number:      req.PassportNumber,
		BirthDate:   req.BirthDate,
		ExpiryDate:  req.ExpiryDate,
		Nationality: req.Nationality,
		Mode:        claims.ModeEpassport,
	}, req.NfcSignatureValid)
	if err != nil {
		if errors.Is(err, claims.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proof registration failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// RegistryStatus godoc
// @Summary      Registry status
// @Description  Returns the current registry count and root
// @Tags         Registry
// @Produce      json
// @Success      200  {object}  verification.StatusResponse
// @Router       /v1/registry/status [get]
func (h *Handler) RegistryStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.RegistryStatus())
}

// CheckInclusion godoc
// @Summary      Verify an inclusion path
// @Description  Walks a Merkle authentication path against a published tree snapshot
// @Tags         Registry
// @Accept       json
// @Produce      json
// @Param        body  body      verification.InclusionRequest  true  "Inclusion path"
// @Success      200  {object}  map[string]bool
// @Failure      400  {object}  map[string]string
// @Router       /v1/registry/inclusion [post]
func (h *Handler) CheckInclusion(c *gin.Context) {
	var req InclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	included, err := h.Service.CheckInclusion(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"included": included})
}
