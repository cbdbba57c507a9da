package handlers

import (
	"strings"

	"tradenexus/internal/core/domain"
	"tradenexus/internal/core/services"
	"tradenexus/internal/pkg/pagination"
	"tradenexus/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// DataHandler handles shipment, company and reference data endpoints
type DataHandler struct {
	store *services.DataStore
}

// NewDataHandler creates a new data handler
func NewDataHandler(store *services.DataStore) *DataHandler {
	return &DataHandler{store: store}
}

// ============================================================
// Shipments
// ============================================================

// ListShipments lists shipments, most recent first
// @Summary List shipments
// @Description Search shipments with optional filters
// @Tags Shipments
// @Produce json
// @Param q query string false "Search id, product, importer, exporter or port"
// @Param origin query string false "Origin country"
// @Param dest query string false "Destination country"
// @Param hs query string false "HS code prefix"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /data/shipments [get]
func (h *DataHandler) ListShipments(c *fiber.Ctx) error {
	filter := services.ShipmentFilter{
		Query:         strings.TrimSpace(c.Query("q")),
		OriginCountry: c.Query("origin"),
		DestCountry:   c.Query("dest"),
		HsCode:        c.Query("hs"),
	}

	page := pagination.NewResponse(h.store.SearchShipments(filter), pagination.GetParams(c))
	return response.Paginated(c, "Shipments retrieved successfully", "shipments", page)
}

// GetShipment gets a shipment by ID
// @Summary Get shipment
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /data/shipments/{id} [get]
func (h *DataHandler) GetShipment(c *fiber.Ctx) error {
	shipment, ok := h.store.Shipment(c.Params("id"))
	if !ok {
		return response.NotFound(c, "Shipment not found")
	}

	return response.Success(c, "Shipment retrieved successfully", fiber.Map{"shipment": shipment})
}

// CreateShipment adds a shipment at the front of the list
// @Summary Create shipment
// @Tags Shipments
// @Accept json
// @Produce json
// @Param body body domain.Shipment true "Shipment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /data/shipments [post]
func (h *DataHandler) CreateShipment(c *fiber.Ctx) error {
	var shipment domain.Shipment
	if err := c.BodyParser(&shipment); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if shipment.ID == "" {
		shipment.ID = "SHP-" + shortID()
	}

	h.store.AddShipment(shipment)

	return response.Created(c, "Shipment created successfully", fiber.Map{"shipment": shipment})
}

// UpdateShipment replaces a shipment
// @Summary Update shipment
// @Tags Shipments
// @Accept json
// @Produce json
// @Param id path string true "Shipment ID"
// @Param body body domain.Shipment true "Shipment"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /data/shipments/{id} [put]
func (h *DataHandler) UpdateShipment(c *fiber.Ctx) error {
	var shipment domain.Shipment
	if err := c.BodyParser(&shipment); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	shipment.ID = utils.CopyString(c.Params("id"))

	if !h.store.UpdateShipment(shipment) {
		return response.NotFound(c, "Shipment not found")
	}

	return response.Success(c, "Shipment updated successfully", fiber.Map{"shipment": shipment})
}

// DeleteShipment removes a shipment; deleting a missing id is not an error
// @Summary Delete shipment
// @Tags Shipments
// @Produce json
// @Param id path string true "Shipment ID"
// @Success 200 {object} response.Response
// @Router /data/shipments/{id} [delete]
func (h *DataHandler) DeleteShipment(c *fiber.Ctx) error {
	deleted := h.store.DeleteShipment(utils.CopyString(c.Params("id")))

	return response.Success(c, "Shipment deleted", fiber.Map{"deleted": deleted})
}

// ============================================================
// Companies
// ============================================================

// ListCompanies lists companies, most recent first
// @Summary List companies
// @Description Search companies with optional filters
// @Tags Companies
// @Produce json
// @Param q query string false "Search id, name or industry"
// @Param country query string false "Country"
// @Param industry query string false "Industry"
// @Param tier query string false "Tier"
// @Param verified query bool false "Verified only"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /data/companies [get]
func (h *DataHandler) ListCompanies(c *fiber.Ctx) error {
	filter := services.CompanyFilter{
		Query:        strings.TrimSpace(c.Query("q")),
		Country:      c.Query("country"),
		Industry:     c.Query("industry"),
		Tier:         domain.Tier(c.Query("tier")),
		VerifiedOnly: c.QueryBool("verified"),
	}

	page := pagination.NewResponse(h.store.SearchCompanies(filter), pagination.GetParams(c))
	return response.Paginated(c, "Companies retrieved successfully", "companies", page)
}

// GetCompany gets a company by ID
// @Summary Get company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /data/companies/{id} [get]
func (h *DataHandler) GetCompany(c *fiber.Ctx) error {
	company, ok := h.store.Company(c.Params("id"))
	if !ok {
		return response.NotFound(c, "Company not found")
	}

	return response.Success(c, "Company retrieved successfully", fiber.Map{"company": company})
}

// CreateCompany adds a company at the front of the list
// @Summary Create company
// @Tags Companies
// @Accept json
// @Produce json
// @Param body body domain.Company true "Company"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /data/companies [post]
func (h *DataHandler) CreateCompany(c *fiber.Ctx) error {
	var company domain.Company
	if err := c.BodyParser(&company); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if strings.TrimSpace(company.Name) == "" {
		return response.BadRequest(c, "Name is required")
	}
	if company.ID == "" {
		company.ID = "COMP-" + shortID()
	}

	h.store.AddCompany(company)

	return response.Created(c, "Company created successfully", fiber.Map{"company": company})
}

// UpdateCompany replaces a company
// @Summary Update company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path string true "Company ID"
// @Param body body domain.Company true "Company"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /data/companies/{id} [put]
func (h *DataHandler) UpdateCompany(c *fiber.Ctx) error {
	var company domain.Company
	if err := c.BodyParser(&company); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	company.ID = utils.CopyString(c.Params("id"))

	if !h.store.UpdateCompany(company) {
		return response.NotFound(c, "Company not found")
	}

	return response.Success(c, "Company updated successfully", fiber.Map{"company": company})
}

// DeleteCompany removes a company; deleting a missing id is not an error
// @Summary Delete company
// @Tags Companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} response.Response
// @Router /data/companies/{id} [delete]
func (h *DataHandler) DeleteCompany(c *fiber.Ctx) error {
	deleted := h.store.DeleteCompany(utils.CopyString(c.Params("id")))

	return response.Success(c, "Company deleted", fiber.Map{"deleted": deleted})
}

// ============================================================
// Reference data
// ============================================================

// ListHsCodes lists the flat HS code table
// @Summary List HS codes
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Response
// @Router /data/hs-codes [get]
func (h *DataHandler) ListHsCodes(c *fiber.Ctx) error {
	return response.Success(c, "HS codes retrieved successfully", fiber.Map{
		"hs_codes": h.store.HsCodes(),
	})
}

// HsTree returns the HS classification tree
// @Summary HS code tree
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Response
// @Router /data/hs-tree [get]
func (h *DataHandler) HsTree(c *fiber.Ctx) error {
	return response.Success(c, "HS tree retrieved successfully", fiber.Map{
		"tree": h.store.HsTree(),
	})
}

// GetHsNode returns one node of the HS tree with its children
// @Summary Get HS node
// @Tags Reference
// @Produce json
// @Param code path string true "Chapter, heading or subheading code"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /data/hs-tree/{code} [get]
func (h *DataHandler) GetHsNode(c *fiber.Ctx) error {
	node, ok := h.store.FindHsNode(c.Params("code"))
	if !ok {
		return response.NotFound(c, "HS code not found")
	}

	return response.Success(c, "HS node retrieved successfully", fiber.Map{"node": node})
}

// ListCountryStats lists country trade statistics
// @Summary List country stats
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Response
// @Router /data/country-stats [get]
func (h *DataHandler) ListCountryStats(c *fiber.Ctx) error {
	return response.Success(c, "Country stats retrieved successfully", fiber.Map{
		"country_stats": h.store.CountryStats(),
	})
}

// Reset regenerates every collection
// @Summary Reset data
// @Description Discard all changes and regenerate mock data (Admin only)
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /data/reset [post]
func (h *DataHandler) Reset(c *fiber.Ctx) error {
	h.store.Reset()

	return response.Success(c, "Data reset successfully", fiber.Map{
		"shipments": len(h.store.Shipments()),
		"companies": len(h.store.Companies()),
	})
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
