package dto

import "github.com/noah-isme/meatsafe-api/internal/models"

// UpdateProfileRequest is the self-service patch. Absent fields are left unchanged.
type UpdateProfileRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=120"`
	RestaurantName *string `json:"restaurant_name" validate:"omitempty,max=200"`
}

// UpdateStatusRequest transitions an account out of (or between) review states.
type UpdateStatusRequest struct {
	Status models.AccountStatus `json:"status" validate:"required,oneof=approved rejected"`
}
