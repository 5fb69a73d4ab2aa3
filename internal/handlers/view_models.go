package handlers

import "familyregistry/internal/models"

type RegisterViewData struct {
	Title string
}

type LoginViewData struct {
	Title string
	Error string
	Email string
}

type DashboardViewData struct {
	Title string
	User  models.SessionUser
}

type AdminLoginViewData struct {
	Title           string
	Error           string
	Email           string
	PasswordEnabled bool
	GoogleEnabled   bool
}

type AdminDashboardViewData struct {
	Title     string
	Admin     models.SessionUser
	Status    models.Status
	Statuses  []models.Status
	Counts    map[models.Status]int
	Families  []models.FamilyRecord
	CSRFToken string
	Notice    string
}

type AdminFamilyViewData struct {
	Title     string
	Admin     models.SessionUser
	Family    *models.FamilyRecord
	CSRFToken string
}
