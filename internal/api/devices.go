package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/lorawatch-core/internal/device"
	"github.com/nerrad567/lorawatch-core/internal/journal"
	"github.com/nerrad567/lorawatch-core/internal/monitor"
)

// commandRequest is the body of POST /devices/{devEUI}/commands.
type commandRequest struct {
	Command string `json:"command"`
}

func devEUIParam(r *http.Request) string {
	return device.NormalizeDevEUI(chi.URLParam(r, "devEUI"))
}

// handleListDevices returns all devices in registry order.
//
// Query parameters:
//   - status: never_seen, online, offline, alert
//   - class: device class, e.g. "Sound Unit"
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	status := device.Status(r.URL.Query().Get("status"))
	class := device.Class(r.URL.Query().Get("class"))

	devices := s.registry.Select(func(d *device.Device) bool {
		return (status == "" || d.Status == status) && (class == "" || d.Class == class)
	})
	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleDeviceStats returns counts by status and class.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.Stats())
}

// handleGetDevice returns one device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	devEUI := devEUIParam(r)
	d, ok := s.registry.Get(devEUI)
	if !ok {
		writeNotFound(w, "device not found: "+devEUI)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleCreateDevice provisions a device in ChirpStack and registers it.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req monitor.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	added, err := s.operator.AddDevice(r.Context(), req)
	if err != nil {
		s.logger.Warn("add device failed", "dev_eui", req.DevEUI, "error", err)
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, Result{
		OK:      true,
		Message: fmt.Sprintf("Node %s added successfully.", added.Name),
		Device:  added,
	})
}

// handleDeleteDevice removes a device from ChirpStack and the registry.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	devEUI := devEUIParam(r)
	existing, ok := s.registry.Get(devEUI)
	if !ok {
		writeFailure(w, fmt.Errorf("%w: %s", device.ErrDeviceNotFound, devEUI))
		return
	}

	if err := s.operator.RemoveDevice(r.Context(), devEUI); err != nil {
		s.logger.Warn("remove device failed", "dev_eui", devEUI, "error", err)
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{
		OK:      true,
		Message: fmt.Sprintf("Node %s removed successfully.", existing.Name),
	})
}

// handleClearAlert unlatches a device's alert.
func (s *Server) handleClearAlert(w http.ResponseWriter, r *http.Request) {
	cleared, err := s.operator.ClearAlert(devEUIParam(r))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{
		OK:      true,
		Message: fmt.Sprintf("Node %s alert cleared. Status: %s", cleared.Name, cleared.Status.Label()),
		Device:  cleared,
	})
}

// handleSendCommand queues a single-byte command downlink.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	cmd, err := monitor.ParseCommand(req.Command)
	if err != nil {
		writeFailure(w, err)
		return
	}

	id, err := s.operator.SendCommand(r.Context(), devEUIParam(r), cmd)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, Result{
		OK:          true,
		Message:     cmd.Label() + " sent successfully.",
		QueueItemID: id,
	})
}

// handleRefreshDevices reloads the device list from ChirpStack.
func (s *Server) handleRefreshDevices(w http.ResponseWriter, r *http.Request) {
	n, err := s.operator.Refresh(r.Context())
	if err != nil {
		s.logger.Warn("device refresh failed", "error", err)
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Result{
		OK:      true,
		Message: fmt.Sprintf("Loaded %d devices.", n),
		Loaded:  &n,
	})
}

// handleListProfiles returns the ChirpStack device profiles for the tenant.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.operator.Profiles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles, "count": len(profiles)})
}

// handleListLogs returns the newest journal lines.
//
// Query parameters:
//   - kind: event or alert; both when omitted
//   - limit: number of lines, default 100, capped at 1000
func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "journal not configured")
		return
	}

	var kind journal.Kind
	if k := r.URL.Query().Get("kind"); k != "" {
		parsed, err := journal.ParseKind(k)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		kind = parsed
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.logs.Recent(r.Context(), kind, limit)
	if err != nil {
		s.logger.Error("reading journal failed", "error", err)
		writeInternalError(w, "failed to read logs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}
