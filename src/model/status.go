package model

// BotStatus is the heartbeat record written every scan cycle and read by
// the dashboard to display bot state.
type BotStatus struct {
	Active  bool   `json:"active"`
	Message string `json:"msg"`
	LastRun string `json:"last_run"`
	Version string `json:"version"`
}
