package dto

import (
	"justhear/internal/domains/user/model"
	"justhear/shared"
	"justhear/shared/constant"
	gDto "justhear/shared/dto"
)

type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	FullName   *string `json:"fullName,omitempty"`
	IsVerified bool    `json:"isVerified"`
	LastLogin  *string `json:"lastLogin,omitempty"`
	Active     bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Role = model.Role
	r.FullName = model.FullName
	r.IsVerified = model.IsVerified
	r.Active = model.Active

	if model.LastLogin != nil {
		lastLogin := model.LastLogin.Format(constant.DateFormat)
		r.LastLogin = &lastLogin
	}
	r.Metadata.FromModel(model.Metadata)
}

type GetUsersResponse struct {
	Success   bool           `json:"success"`
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"totalPage"`
	TotalData int            `json:"totalData"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.Success = true
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

type UpdateUserRequest struct {
	FullName *string `db:"full_name" json:"fullName" validate:"omitempty,max=100"`
}
