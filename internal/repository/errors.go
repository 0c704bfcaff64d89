package repository

import "errors"

var (
	// ErrQuotaExceeded is returned by a VideoPlatform when the API key ran out of quota.
	ErrQuotaExceeded = errors.New("video platform quota exceeded")
	// ErrUpstream wraps any other failed call to the video platform.
	ErrUpstream = errors.New("video platform request failed")
	// ErrRunInProgress is returned when another ingest run holds the run lock.
	ErrRunInProgress = errors.New("an ingest run is already in progress")
	// ErrNoRunRecorded is returned when no ingest run has finished yet.
	ErrNoRunRecorded = errors.New("no ingest run recorded")
)
