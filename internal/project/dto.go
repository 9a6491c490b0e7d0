package project

import (
	"time"

	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

type CreateProjectDTO struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

func ToResponse(p timesheet.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}
