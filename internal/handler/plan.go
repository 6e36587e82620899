package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/ecanovas/tourbook/internal/domain"
)

// CreatePlan handles POST /plans.
// The itinerary days are supplied inline; a DRAFT plan may be created with
// a partial itinerary, an ACTIVE one must be complete.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	plan, days, err := requestToPlan(req)
	if err != nil {
		requestError(w, err.Error())
		return
	}

	createdPlan, createdDays, err := s.plans.Create(r.Context(), plan, days)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, planToResponse(createdPlan, createdDays))
}

// GetPlan handles GET /plans/{id}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	plan, days, err := s.plans.GetByID(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, planToResponse(plan, days))
}

// ListPlans handles GET /plans?page=&limit=.
// Only published plans (ACTIVE and public) are listed.
func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	params := queryPagination(r)
	plans, total, err := s.plans.ListPublished(r.Context(), params)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Data       []domain.Plan `json:"data"`
		Pagination pagination    `json:"pagination"`
	}{
		Data:       plans,
		Pagination: pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// PublishPlan handles POST /plans/{id}/publish.
// Publication revalidates the full itinerary; gaps reject with 422.
func (s *Server) PublishPlan(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	plan, err := s.plans.Publish(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// AttachPlanImage handles POST /plans/{id}/images.
func (s *Server) AttachPlanImage(w http.ResponseWriter, r *http.Request) {
	s.attachImage(w, r, domain.OwnerPlan)
}

// PlanGallery handles GET /plans/{id}/images.
func (s *Server) PlanGallery(w http.ResponseWriter, r *http.Request) {
	s.gallery(w, r, domain.OwnerPlan)
}

// AttachServiceImage handles POST /services/{id}/images.
func (s *Server) AttachServiceImage(w http.ResponseWriter, r *http.Request) {
	s.attachImage(w, r, domain.OwnerService)
}

// ServiceGallery handles GET /services/{id}/images.
func (s *Server) ServiceGallery(w http.ResponseWriter, r *http.Request) {
	s.gallery(w, r, domain.OwnerService)
}

// attachImage appends an image to the owner's gallery. The owner kind comes
// from the route, the ID from the path parameter.
func (s *Server) attachImage(w http.ResponseWriter, r *http.Request, kind domain.ImageOwnerKind) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "invalid request body")
		return
	}

	img, err := s.plans.AttachImage(r.Context(), domain.ImageOwner{Kind: kind, ID: id}, req.URL)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, img)
}

// gallery lists the owner's images in position order.
func (s *Server) gallery(w http.ResponseWriter, r *http.Request, kind domain.ImageOwnerKind) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		requestError(w, err.Error())
		return
	}

	images, err := s.plans.Gallery(r.Context(), domain.ImageOwner{Kind: kind, ID: id})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, images)
}

// --- mapping helpers --------------------------------------------------------

type createPlanRequest struct {
	CreatorID     uuid.UUID             `json:"creator_id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	IncludedItems string                `json:"included_items"`
	Requirements  string                `json:"requirements"`
	PackingList   string                `json:"packing_list"`
	Capacity      int                   `json:"capacity"`
	DurationDays  int                   `json:"duration_days"`
	TotalPrice    float64               `json:"total_price"`
	Difficulty    domain.PlanDifficulty `json:"difficulty"`
	Public        bool                  `json:"public"`
	Status        domain.PlanStatus     `json:"status"`
	CoverImage    string                `json:"cover_image"`
	Days          []planDayRequest      `json:"days"`
}

type planDayRequest struct {
	DayNumber    int    `json:"day_number"`
	DisplayOrder int    `json:"display_order"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	Notes        string `json:"notes"`
}

// planDayResponse is the wire shape of an itinerary day with "15:04" times.
type planDayResponse struct {
	ID              uuid.UUID `json:"id"`
	DayNumber       int       `json:"day_number"`
	DisplayOrder    int       `json:"display_order"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Notes           string    `json:"notes,omitempty"`
}

type planResponse struct {
	domain.Plan
	Days []planDayResponse `json:"days"`
}

func requestToPlan(req createPlanRequest) (domain.Plan, []domain.PlanDay, error) {
	p := domain.Plan{
		CreatorID:     req.CreatorID,
		Name:          req.Name,
		Description:   req.Description,
		IncludedItems: req.IncludedItems,
		Requirements:  req.Requirements,
		PackingList:   req.PackingList,
		Capacity:      req.Capacity,
		DurationDays:  req.DurationDays,
		TotalPrice:    req.TotalPrice,
		Difficulty:    req.Difficulty,
		Public:        req.Public,
		Status:        req.Status,
		CoverImage:    req.CoverImage,
	}

	days := make([]domain.PlanDay, len(req.Days))
	for i, d := range req.Days {
		start, err := domain.ParseTimeOfDay(d.StartTime)
		if err != nil {
			return domain.Plan{}, nil, err
		}
		end, err := domain.ParseTimeOfDay(d.EndTime)
		if err != nil {
			return domain.Plan{}, nil, err
		}
		days[i] = domain.PlanDay{
			DayNumber:    d.DayNumber,
			DisplayOrder: d.DisplayOrder,
			Title:        d.Title,
			Description:  d.Description,
			StartTime:    start,
			EndTime:      end,
			Notes:        d.Notes,
		}
	}
	return p, days, nil
}

func planToResponse(p domain.Plan, days []domain.PlanDay) planResponse {
	resp := planResponse{Plan: p, Days: make([]planDayResponse, len(days))}
	for i, d := range days {
		resp.Days[i] = planDayResponse{
			ID:              d.ID,
			DayNumber:       d.DayNumber,
			DisplayOrder:    d.DisplayOrder,
			Title:           d.Title,
			Description:     d.Description,
			StartTime:       d.StartTime.String(),
			EndTime:         d.EndTime.String(),
			DurationMinutes: d.DurationMinutes,
			Notes:           d.Notes,
		}
	}
	return resp
}
