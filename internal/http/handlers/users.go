package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"service-booking/internal/apperr"
	"service-booking/internal/domain"
	"service-booking/internal/service/auth"
	"service-booking/internal/service/user"
)

const profileMultipartLimit = user.MaxImageSize + bodyLimit

// UserHandler serves the account self-service and admin user endpoints.
type UserHandler struct {
	*Responder
	usecase  userUsecase
	accounts accountUsecase
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(rs *Responder, uc userUsecase, accounts accountUsecase) *UserHandler {
	return &UserHandler{Responder: rs, usecase: uc, accounts: accounts}
}

type updateMeRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

type createUserRequest struct {
	Identifier  string      `json:"identifier"`
	Password    string      `json:"password"`
	Name        string      `json:"name"`
	Role        domain.Role `json:"role,omitempty"`
	License     *string     `json:"licenseNumber"`
	VehicleType string      `json:"vehicleType"`
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.usecase.Me(r.Context(), auth.PrincipalFrom(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "User fetched", userToResponse(*u))
}

// UpdateMe handles PATCH /api/v1/users/me. The body is JSON, or a multipart
// form when a new picture is attached.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var (
		upd domain.ProfileUpdate
		err error
	)
	if isMultipart(r) {
		upd, err = h.readProfileForm(w, r)
	} else {
		var req updateMeRequest
		if ok := decodeJSON(h.logger, w, r, &req); !ok {
			return
		}
		upd = domain.ProfileUpdate{Name: req.Name, Address: req.Address}
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.usecase.UpdateMe(r.Context(), auth.PrincipalFrom(r.Context()), upd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, "User updated successfully", userToResponse(*u))
}

func (h *UserHandler) readProfileForm(w http.ResponseWriter, r *http.Request) (domain.ProfileUpdate, error) {
	r.Body = http.MaxBytesReader(w, r.Body, profileMultipartLimit)
	if err := r.ParseMultipartForm(profileMultipartLimit); err != nil {
		return domain.ProfileUpdate{}, fmt.Errorf("%w: malformed multipart body", apperr.ErrInvalid)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	f := r.MultipartForm.Value
	opt := func(k string) *string {
		vs, ok := f[k]
		if !ok || len(vs) == 0 {
			return nil
		}
		v := vs[0]
		return &v
	}

	v := apperr.NewValidation()
	for _, k := range []string{"email", "phone"} {
		v.Check(opt(k) == nil, k, "cannot be changed on this endpoint")
	}
	img, err := imageFromForm(r, user.MaxImageSize)
	if err != nil {
		v.Add("image", err.Error())
	}
	if err := v.Err(); err != nil {
		return domain.ProfileUpdate{}, err
	}
	return domain.ProfileUpdate{Name: opt("name"), Address: opt("address"), Image: img}, nil
}

// List handles GET /api/v1/users?page&limit.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, pg, err := h.usecase.List(r.Context(), auth.PrincipalFrom(r.Context()), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, "Users fetched", usersToResponse(users), listPaginationOf(pg))
}

// ListCustomers handles GET /api/v1/customers?page&limit.
func (h *UserHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	users, pg, err := h.usecase.ListCustomers(r.Context(), auth.PrincipalFrom(r.Context()), page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.page(w, r, "Customers fetched", usersToResponse(users), listPaginationOf(pg))
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if ok := decodeJSON(h.logger, w, r, &req); !ok {
		return
	}
	u, err := h.accounts.CreateAccount(r.Context(), auth.PrincipalFrom(r.Context()), auth.Account{
		Registration: auth.Registration{
			Identifier: req.Identifier,
			Password:   req.Password,
			Name:       req.Name,
			Role:       domain.Role(strings.ToUpper(string(req.Role))),
		},
		License:     req.License,
		VehicleType: req.VehicleType,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, "User created successfully", userToResponse(*u))
}
