package jwtauth

import (
	adminmw "ballotbox/pkg/platform/middleware/admin"
)

// MiddlewareAdapter bridges the Service to the admin middleware's
// TokenValidator interface.
type MiddlewareAdapter struct {
	service *Service
}

func NewMiddlewareAdapter(service *Service) *MiddlewareAdapter {
	return &MiddlewareAdapter{service: service}
}

func (a *MiddlewareAdapter) ValidateToken(tokenString string) (*adminmw.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &adminmw.Claims{ActorID: claims.ActorID}, nil
}
