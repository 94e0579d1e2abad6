package domain

import "time"

// Admin creates links and reviews submissions
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Employee submits payment entries against the latest link
type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Code         string    `json:"employeeId"` // Employee-facing code, e.g. EMP0007
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
