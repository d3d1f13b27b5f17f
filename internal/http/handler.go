package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/highwaynet/ucc-service/internal/excel"
	"github.com/highwaynet/ucc-service/internal/export"
	"github.com/highwaynet/ucc-service/internal/http/middleware"
	"github.com/highwaynet/ucc-service/internal/model"
	"github.com/highwaynet/ucc-service/internal/pdf"
	"github.com/highwaynet/ucc-service/internal/service"
)

type Handler struct {
	drafts    *service.DraftService
	uccs      *service.UCCService
	lists     *service.ContractListService
	documents *service.DocumentService
	logs      *service.ChangeLogService
	stretches *service.StretchService
	excel     *excel.Generator
	pdf       *pdf.Generator
	log       zerolog.Logger
}

func NewHandler(
	drafts *service.DraftService,
	uccs *service.UCCService,
	lists *service.ContractListService,
	documents *service.DocumentService,
	logs *service.ChangeLogService,
	stretches *service.StretchService,
	excelGen *excel.Generator,
	pdfGen *pdf.Generator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		drafts:    drafts,
		uccs:      uccs,
		lists:     lists,
		documents: documents,
		logs:      logs,
		stretches: stretches,
		excel:     excelGen,
		pdf:       pdfGen,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	ucc := protected.Group("/ucc")
	ucc.POST("/draft", h.createDraft)
	ucc.POST("/work-locations", h.addWorkLocations)
	ucc.PATCH("/work-locations/:id", h.updateWorkLocation)
	ucc.PUT("/contract-details", h.updateContractDetails)
	ucc.POST("/nh-details", h.saveNHDetails)
	ucc.POST("/approve", h.approve)
	ucc.POST("/contracts", h.listContracts)
	ucc.POST("/my-stretch-contracts", h.listMyStretchContracts)
	ucc.POST("/documents", h.uploadDocument)
	ucc.GET("/documents/:id/download", h.downloadDocument)
	ucc.DELETE("/documents/:id", h.deleteDocument)
	ucc.GET("/logs", h.listLogs)
	ucc.POST("/logs", h.addLog)
	ucc.GET("/:id/review", h.getReview)
	ucc.GET("/:id/review/pdf", h.getReviewPDF)
	ucc.GET("/:id/documents", h.listDocuments)
	ucc.POST("/:id/submit", h.submitFinalUCC)

	protected.GET("/stretches", h.userStretches)
	protected.GET("/stretches/split", h.splitStretchLine)
	protected.GET("/implementation-modes", h.implementationModes)
}

type createDraftRequest struct {
	StretchIDs []string `json:"stretchIds" binding:"required"`
}

func (h *Handler) createDraft(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draftID, err := h.drafts.CreateDraft(c.Request.Context(), principal, req.StretchIDs)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"draftUccId": draftID})
}

type addWorkLocationsRequest struct {
	UCCID       int64                    `json:"uccId"`
	StretchIDs  []string                 `json:"stretchIds"`
	TypeOfWorks []service.WorkEntryInput `json:"typeOfWorks" binding:"required"`
}

func (h *Handler) addWorkLocations(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req addWorkLocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.drafts.AddWorkLocations(c.Request.Context(), principal, service.AddWorkLocationsInput{
		DraftID:    req.UCCID,
		StretchIDs: req.StretchIDs,
		Entries:    req.TypeOfWorks,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updateWorkLocationRequest struct {
	WorkType  string                  `json:"workType"`
	Segment   *service.SegmentInput   `json:"segment"`
	BlackSpot *service.BlackSpotInput `json:"blackSpot"`
}

func (h *Handler) updateWorkLocation(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req updateWorkLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.drafts.UpdateWorkLocation(c.Request.Context(), principal, id, service.UpdateWorkLocationInput{
		WorkType:  req.WorkType,
		Segment:   req.Segment,
		BlackSpot: req.BlackSpot,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "work location updated"})
}

type contractDetailsRequest struct {
	UCCID                int64   `json:"uccId" binding:"required"`
	ShortName            string  `json:"shortName"`
	ContractName         string  `json:"contractName"`
	ImplementationModeID *int64  `json:"implementationModeId"`
	SchemeID             *int64  `json:"schemeId"`
	ROID                 *int64  `json:"roId"`
	StateID              *int64  `json:"stateId"`
	ContractLength       float64 `json:"contractLength"`
	PIUIDs               []int64 `json:"piuIds"`
}

func (h *Handler) updateContractDetails(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req contractDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.drafts.UpdateContractDetails(c.Request.Context(), principal, service.ContractDetailsInput{
		ContractID:           req.UCCID,
		ShortName:            req.ShortName,
		ContractName:         req.ContractName,
		ImplementationModeID: req.ImplementationModeID,
		SchemeID:             req.SchemeID,
		ROID:                 req.ROID,
		StateID:              req.StateID,
		ContractLength:       req.ContractLength,
		PIUIDs:               req.PIUIDs,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "contract details updated"})
}

type nhDetailsRequest struct {
	UCCID        int64                        `json:"uccId" binding:"required"`
	NHDetails    []service.NHDetailInput      `json:"nhDetails"`
	StateDetails []service.NHStateDetailInput `json:"nhStateDetails"`
}

func (h *Handler) saveNHDetails(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req nhDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.drafts.SaveNHDetails(c.Request.Context(), principal, req.UCCID, req.NHDetails, req.StateDetails)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "nh details saved"})
}

func (h *Handler) submitFinalUCC(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	draftID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	result, err := h.uccs.SubmitFinalUCC(c.Request.Context(), principal, draftID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type approveRequest struct {
	UCC      string `json:"ucc" binding:"required"`
	Decision string `json:"decision" binding:"required"`
}

// approve takes the permanent contract code in the body: the code itself
// contains slashes, so it cannot travel as a path segment.
func (h *Handler) approve(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := strings.TrimSpace(req.UCC)
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ucc"})
		return
	}

	decision := strings.ToUpper(strings.TrimSpace(req.Decision))
	if err := h.uccs.Approve(c.Request.Context(), principal, code, decision); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

type listContractsRequest struct {
	StretchIDs []string `json:"stretchIds"`
	PIU        []string `json:"piu"`
	RO         []string `json:"ro"`
	Program    []string `json:"program"`
	Phase      []string `json:"phase"`
	TypeOfWork []string `json:"typeOfWork"`
	Scheme     []string `json:"scheme"`
	Corridor   []string `json:"corridor"`
	Search     string   `json:"search"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
}

func (r listContractsRequest) query() service.ListQuery {
	return service.ListQuery{
		StretchIDs: r.StretchIDs,
		PIU:        r.PIU,
		RO:         r.RO,
		Program:    r.Program,
		Phase:      r.Phase,
		TypeOfWork: r.TypeOfWork,
		Scheme:     r.Scheme,
		Corridor:   r.Corridor,
		Search:     r.Search,
		Page:       r.Page,
		PageSize:   r.PageSize,
	}
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req listContractsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := strings.ToLower(c.Query("export"))
	if format == "" {
		page, err := h.lists.GetContracts(c.Request.Context(), principal, req.query())
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
		return
	}

	rows, err := h.lists.ExportContracts(c.Request.Context(), principal, req.query())
	if err != nil {
		h.handleError(c, err)
		return
	}

	switch format {
	case "csv":
		content, err := export.ContractsCSV(rows)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="contracts.csv"`)
		c.Data(http.StatusOK, "text/csv", content)
	case "xlsx":
		content, err := h.excel.Generate(rows)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="contracts.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid export format"})
	}
}

func (h *Handler) listMyStretchContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req listContractsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.lists.GetMyStretchContracts(c.Request.Context(), principal, req.query())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) getReview(c *gin.Context) {
	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	review, err := h.uccs.GetReview(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) getReviewPDF(c *gin.Context) {
	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	review, err := h.uccs.GetReview(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := h.pdf.Generate(*review)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="ucc-review-%d.pdf"`, contractID))
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) uploadDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	var draftID int64
	if raw := c.PostForm("uccId"); raw != "" {
		draftID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uccId"})
			return
		}
	}

	var stretchIDs []string
	for _, id := range strings.Split(c.PostForm("stretchIds"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			stretchIDs = append(stretchIDs, id)
		}
	}

	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read file"})
		return
	}
	defer reader.Close()

	result, err := h.documents.Upload(c.Request.Context(), principal, service.UploadInput{
		DraftID:      draftID,
		StretchIDs:   stretchIDs,
		DocumentType: c.PostForm("documentType"),
		FileName:     file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		Body:         reader,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) listDocuments(c *gin.Context) {
	contractID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	docs, err := h.documents.List(c.Request.Context(), contractID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (h *Handler) downloadDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	url, err := h.documents.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func (h *Handler) deleteDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := h.documents.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

type addLogRequest struct {
	UCCID         string `json:"uccId" binding:"required"`
	FeatureModule string `json:"featureModule" binding:"required"`
	ChangedField  string `json:"changedField" binding:"required"`
	NewValue      string `json:"newValue"`
}

func (h *Handler) addLog(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req addLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.logs.Add(c.Request.Context(), principal, req.UCCID, req.FeatureModule, req.ChangedField, req.NewValue)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "log recorded"})
}

func (h *Handler) listLogs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))

	result, err := h.logs.List(c.Request.Context(), principal, c.Query("featureModule"), page, pageSize)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) userStretches(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	stretches, err := h.stretches.UserStretches(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stretches": stretches})
}

func (h *Handler) splitStretchLine(c *gin.Context) {
	ucc := strings.TrimSpace(c.Query("ucc"))
	start, err1 := parseChainagePoint(c, "start")
	end, err2 := parseChainagePoint(c, "end")
	if ucc == "" || err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ucc, start and end coordinates are required"})
		return
	}

	coords, err := h.stretches.SplitStretchLine(c.Request.Context(), ucc, start, end)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coordinates": coords})
}

func parseChainagePoint(c *gin.Context, prefix string) (model.Chainage, error) {
	lat, err := strconv.ParseFloat(c.Query(prefix+"Lat"), 64)
	if err != nil {
		return model.Chainage{}, err
	}
	long, err := strconv.ParseFloat(c.Query(prefix+"Long"), 64)
	if err != nil {
		return model.Chainage{}, err
	}
	return model.Chainage{Lat: lat, Long: long}, nil
}

func (h *Handler) implementationModes(c *gin.Context) {
	modes, err := h.stretches.ImplementationModes(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"implementationModes": modes})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCodesExhausted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
