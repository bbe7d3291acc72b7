package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/talent-match/internal/domain/booking"
	"github.com/khoahotran/talent-match/internal/domain/feed"
)

// Auth DTOs
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signupEmployerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CompanyName string `json:"company_name" binding:"required"`
	Website     string `json:"website"`
}

type TokenDTO struct {
	AccessToken string    `json:"access_token"`
	UserID      uuid.UUID `json:"user_id,omitempty"`
	ProfileID   uuid.UUID `json:"profile_id,omitempty"`
	Role        string    `json:"role,omitempty"`
}

// Talent DTOs
type updatePreferencesRequest struct {
	FullName   *string  `json:"full_name"`
	Bio        *string  `json:"bio"`
	Locations  []string `json:"locations"`
	Industries []string `json:"industries"`
	WorkStyles []string `json:"work_styles"`
	Skills     []string `json:"skills"`
}

type scrollRequest struct {
	Position *float64 `json:"position" binding:"required"`
}

type respondRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// Opportunity DTOs
type createOpportunityRequest struct {
	Title           string   `json:"title"`
	CompanyName     string   `json:"company_name"`
	Location        string   `json:"location"`
	Industry        string   `json:"industry"`
	WorkStyle       string   `json:"work_style"`
	JobType         string   `json:"job_type"`
	ExperienceLevel string   `json:"experience_level"`
	CompanySize     string   `json:"company_size"`
	SalaryMin       *int     `json:"salary_min"`
	SalaryMax       *int     `json:"salary_max"`
	Description     string   `json:"description"`
	Skills          []string `json:"skills"`
}

// Employer DTOs
type updateEmployerRequest struct {
	CompanyName *string `json:"company_name"`
	Website     *string `json:"website"`
}

type inviteRequest struct {
	TalentID      uuid.UUID  `json:"talent_id" binding:"required"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
	Message       string     `json:"message"`
}

// Booking DTOs
type startBookingRequest struct {
	Service booking.Service   `json:"service" binding:"required"`
	Answers map[string]string `json:"answers"`
}

type scheduleRequest struct {
	SlotAt time.Time `json:"slot_at" binding:"required"`
}

type payRequest struct {
	Card booking.Card `json:"card"`
}

// splitList accepts both repeated keys (?location=a&location=b) and comma
// separated values (?location=a,b).
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func queryInt(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", feed.ErrInvalidFilter, key)
	}
	return n, nil
}

// ParseFilterState reads the feed filter from query parameters.
func ParseFilterState(q url.Values) (feed.FilterState, error) {
	state := feed.FilterState{
		Search:           strings.TrimSpace(q.Get("search")),
		Locations:        splitList(q["location"]),
		Industries:       splitList(q["industry"]),
		JobTypes:         splitList(q["job_type"]),
		ExperienceLevels: splitList(q["experience_level"]),
		WorkStyles:       splitList(q["work_style"]),
		CompanySizes:     splitList(q["company_size"]),
		PostedWithin:     feed.PostedWithin(strings.TrimSpace(q.Get("posted_within"))),
		SortBy:           feed.SortKey(strings.TrimSpace(q.Get("sort"))),
	}

	var err error
	if state.SalaryMin, err = queryInt(q, "salary_min"); err != nil {
		return state, err
	}
	if state.SalaryMax, err = queryInt(q, "salary_max"); err != nil {
		return state, err
	}
	if raw := q.Get("remote_only"); raw != "" {
		if state.RemoteOnly, err = strconv.ParseBool(raw); err != nil {
			return state, fmt.Errorf("%w: remote_only must be a boolean", feed.ErrInvalidFilter)
		}
	}
	return state, state.Validate()
}

const (
	maxPageLimit = 100
	maxOffset    = 1 << 31
)

// pageParams reads ?page= (1-based) and ?limit= into limit/offset. The limit
// is capped at maxPageLimit; pages beyond maxOffset are rejected.
func pageParams(q url.Values, defaultLimit int) (limit, offset int, err error) {
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page-1 > maxOffset/limit {
		return 0, 0, fmt.Errorf("page %d is out of range", page)
	}
	return limit, (page - 1) * limit, nil
}
