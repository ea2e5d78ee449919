package handler

import "github.com/sandia/users-manager/internal/core/domain"

// toCandidate maps a registration request to a user candidate. The id is
// left empty; the store assigns it.
func toCandidate(r registerRequest) *domain.User {
	return &domain.User{
		Ident: domain.Identity{
			Email:     r.Email,
			Username:  r.Username,
			Password:  r.Password,
			Name:      r.Name,
			LastName:  r.LastName,
			Telephone: r.Telephone,
		},
		Gender: domain.Gender(r.Gender),
		Card:   r.Card,
	}
}

// applyUpdate maps an update request onto a user identified by id. Email
// and username are not part of the request; they never change.
func applyUpdate(id string, r updateUserRequest) *domain.User {
	return &domain.User{
		Ident: domain.Identity{
			ID:        id,
			Password:  r.Password,
			Name:      r.Name,
			LastName:  r.LastName,
			Telephone: r.Telephone,
		},
		Gender: domain.Gender(r.Gender),
		Card:   r.Card,
	}
}

// toProfileResponse flattens either variant into the response shape.
func toProfileResponse(p domain.Profile) profileResponse {
	ident := p.Identity()
	resp := profileResponse{
		ID:        ident.ID,
		Kind:      string(p.Kind()),
		Email:     ident.Email,
		Username:  ident.Username,
		Name:      ident.Name,
		LastName:  ident.LastName,
		Telephone: ident.Telephone,
	}

	switch v := p.(type) {
	case *domain.User:
		resp.Gender = string(v.Gender)
		resp.Card = v.Card
	case *domain.Administrator:
		resp.CurrentAccount = v.CurrentAccount
	}
	return resp
}
