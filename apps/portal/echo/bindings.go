package echoapi

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
)

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		User     session.Identity `json:"user"`
		Redirect string           `json:"redirect"`
	}

	SignupRequest struct {
		Username        string `json:"username" validate:"required,min=6,alphanum_"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8"`
		PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
		FacultyID       string `json:"facultyID" validate:"omitempty,objectid"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	FacultyRequest struct {
		FacultyName string `json:"facultyName" validate:"required"`
	}

	TopicRequest struct {
		TopicName   string    `json:"topicName" validate:"required"`
		Description string    `json:"description"`
		FacultyID   string    `json:"facultyID" validate:"required,objectid"`
		StartDate   time.Time `json:"startDate"`
		EndDate     time.Time `json:"endDate" validate:"required"`
	}

	GradeRequest struct {
		Status   string `json:"status" validate:"required"`
		Feedback string `json:"feedback"`
	}

	PublishRequest struct {
		ContributionID string `json:"contributionID" validate:"required,objectid"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (sr *SignupRequest) Validate(validate *validator.Validate) error {
	sr.Username = core.CleanString(sr.Username, true /* lower */)
	sr.Email = core.CleanString(sr.Email, true /* lower */)
	return validate.Struct(sr)
}

func (fr *ForgotPasswordRequest) Validate(validate *validator.Validate) error {
	fr.Email = core.CleanString(fr.Email, true /* lower */)
	return validate.Struct(fr)
}

func (fr *FacultyRequest) Validate(validate *validator.Validate) error {
	fr.FacultyName = core.CleanString(fr.FacultyName)
	return validate.Struct(fr)
}

func (tr *TopicRequest) Validate(validate *validator.Validate) error {
	tr.TopicName = core.CleanString(tr.TopicName)
	tr.Description = core.CleanString(tr.Description)
	return validate.Struct(tr)
}

func (gr *GradeRequest) Validate(validate *validator.Validate) error {
	gr.Status = core.CleanString(gr.Status, true /* lower */)
	return validate.Struct(gr)
}

func (pr *PublishRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(pr)
}
