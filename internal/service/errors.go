package service

import "errors"

var (
	// ErrInvalidInput indicates a required parameter is missing or malformed
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates the requested entity does not exist in the organization's scope
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the request lacks a resolved organization
	ErrUnauthorized = errors.New("unauthorized")
)
