package apitest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/xuri/excelize/v2"
)

// TemplateHeaders is the header row of the import template
var TemplateHeaders = []string{"device_name", "quantity", "description", "procurement_date", "location", "cost"}

// RegisterRoutes registers all API routes
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	// Auth
	mux.HandleFunc("POST /api/auth/login", s.login)
	mux.HandleFunc("GET /api/auth/verify", s.verify)
	mux.HandleFunc("POST /api/auth/logout", s.logout)

	// Filters
	mux.HandleFunc("GET /api/resources/filter-options", s.filterOptions)
	mux.HandleFunc("GET /api/resources/filter/devices/{department}/{location}", s.locationDevices)
	mux.HandleFunc("GET /api/resources/departments", s.listDepartments)
	mux.HandleFunc("GET /api/resources/departments/{name}/locations", s.departmentLocations)

	// Resource CRUD
	mux.HandleFunc("GET /api/resources", s.listResources)
	mux.HandleFunc("POST /api/resources", s.createResource)
	mux.HandleFunc("GET /api/resources/{id}", s.getResource)
	mux.HandleFunc("PUT /api/resources/{id}", s.updateResource)
	mux.HandleFunc("DELETE /api/resources/{id}", s.deleteResource)

	// Import
	mux.HandleFunc("POST /api/upload/upload", s.uploadFile)
	mux.HandleFunc("POST /api/upload/import", s.importFile)
	mux.HandleFunc("GET /api/upload/template", s.template)

	// Export
	mux.HandleFunc("GET /api/export/{format}", s.export)

	// Dashboard and assistant
	mux.HandleFunc("GET /api/dashboard/overview", s.dashboard)
	mux.HandleFunc("GET /api/dashboard/department-analytics", s.departmentAnalytics)
	mux.HandleFunc("GET /api/dashboard/cost-analysis", s.costAnalysis)
	mux.HandleFunc("GET /api/dashboard/utilization-metrics", s.utilizationMetrics)
	mux.HandleFunc("GET /api/ai/status", s.aiStatus)
	mux.HandleFunc("POST /api/ai/chat", s.aiChat)
	mux.HandleFunc("POST /api/ai/crud", s.aiCRUD)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Email != Email || body.Password != Password {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.LoginResponse{Token: s.token, User: s.user})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.user
	writeJSON(w, http.StatusOK, model.VerifyResponse{Valid: true, User: &user})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) filterOptions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.options)
}

func (s *Server) locationDevices(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("department") + "/" + r.PathValue("location")

	s.mu.Lock()
	names := s.devices[key]
	s.mu.Unlock()

	out := model.LocationDevicesResponse{Devices: []model.LocationDevice{}}
	for _, n := range names {
		out.Devices = append(out.Devices, model.LocationDevice{DeviceName: n})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	depts := make([]model.Department, 0, len(s.options.Departments))
	for _, d := range s.options.Departments {
		depts = append(depts, model.Department{
			ID:            "dept_" + d.Name,
			Name:          d.Name,
			Locations:     d.Locations,
			ResourceCount: d.Stats.TotalResources,
			TotalCost:     d.Stats.TotalCost,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"departments": depts})
}

func (s *Server) departmentLocations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.options.Department(r.PathValue("name"))
	if d == nil {
		writeError(w, http.StatusNotFound, "department not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"locations": d.Locations})
}

// matches applies the department/location/device_name/search filters
func matches(res model.Resource, q map[string]string) bool {
	if v := q["department"]; v != "" && res.Department != v {
		return false
	}
	if v := q["location"]; v != "" && res.Location != v {
		return false
	}
	if v := q["device_name"]; v != "" && res.DeviceName != v {
		return false
	}
	if v := strings.ToLower(q["search"]); v != "" {
		hay := strings.ToLower(res.DeviceName + " " + res.Description + " " + res.Location)
		if !strings.Contains(hay, v) {
			return false
		}
	}
	if v := q["date_from"]; v != "" && res.ProcurementDate < v {
		return false
	}
	if v := q["date_to"]; v != "" && res.ProcurementDate > v {
		return false
	}
	return true
}

func filterParams(r *http.Request) map[string]string {
	q := r.URL.Query()
	out := map[string]string{}
	for _, k := range []string{"department", "location", "device_name", "search", "date_from", "date_to"} {
		out[k] = q.Get(k)
	}
	return out
}

func (s *Server) filtered(r *http.Request) []model.Resource {
	params := filterParams(r)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Resource
	for _, res := range s.resources {
		if matches(res, params) {
			out = append(out, res)
		}
	}
	return out
}

func (s *Server) listResources(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 {
		perPage = 10
	}

	all := s.filtered(r)
	total := len(all)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	params := filterParams(r)
	writeJSON(w, http.StatusOK, model.ResourcesResponse{
		Resources: append([]model.Resource{}, all[start:end]...),
		Pagination: model.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalCount: total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
		Filters: model.ResourceFilters{
			Department: params["department"],
			Location:   params["location"],
			DeviceName: params["device_name"],
			Search:     params["search"],
		},
	})
}

func (s *Server) getResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range s.resources {
		if res.ID == id {
			writeJSON(w, http.StatusOK, res)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Resource not found")
}

func decodeInput(w http.ResponseWriter, r *http.Request) (*model.ResourceInput, bool) {
	var in model.ResourceInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if errs := in.Validate(); len(errs) > 0 {
		writeErrorDetails(w, http.StatusBadRequest, "Validation failed", errs)
		return nil, false
	}
	return &in, true
}

func (s *Server) createResource(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res := model.Resource{
		ID:              generateID(),
		SlNo:            len(s.resources) + 1,
		DeviceName:      in.DeviceName,
		Quantity:        in.Quantity,
		Description:     in.Description,
		ProcurementDate: in.ProcurementDate,
		Location:        in.Location,
		Cost:            in.Cost,
		Department:      in.Department,
		CreatedBy:       s.user.Email,
	}
	s.resources = append(s.resources, res)
	s.addToHierarchy(res.Department, res.Location, res.DeviceName)
	s.recomputeStats()
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) updateResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.resources {
		res := &s.resources[i]
		if res.ID != id {
			continue
		}
		res.DeviceName = in.DeviceName
		res.Quantity = in.Quantity
		res.Description = in.Description
		res.ProcurementDate = in.ProcurementDate
		res.Location = in.Location
		res.Cost = in.Cost
		res.Department = in.Department
		res.UpdatedBy = s.user.Email
		s.addToHierarchy(res.Department, res.Location, res.DeviceName)
		s.recomputeStats()
		writeJSON(w, http.StatusOK, *res)
		return
	}
	writeError(w, http.StatusNotFound, "Resource not found")
}

func (s *Server) deleteResource(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, res := range s.resources {
		if res.ID == id {
			s.resources = append(s.resources[:i], s.resources[i+1:]...)
			s.recomputeStats()
			writeJSON(w, http.StatusOK, map[string]string{"message": "Resource deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Resource not found")
}

// addToHierarchy registers department/location/device; callers hold mu.
// It reports whether the department was new.
func (s *Server) addToHierarchy(department, location, device string) bool {
	d := s.options.Department(department)
	created := false
	if d == nil {
		s.options.Departments = append(s.options.Departments, model.DepartmentWithStats{Name: department})
		d = &s.options.Departments[len(s.options.Departments)-1]
		created = true
	}
	if location != "" && !contains(d.Locations, location) {
		d.Locations = append(d.Locations, location)
	}
	if device != "" && !contains(d.DeviceTypes, device) {
		d.DeviceTypes = append(d.DeviceTypes, device)
	}
	return created
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// readRows returns the data rows of an uploaded CSV or XLSX file
func readRows(name string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			rows = rows[1:]
		}
		return rows, nil
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			rows = rows[1:]
		}
		return rows, nil
	}
	return nil, fmt.Errorf("unsupported file format %q", filepath.Ext(name))
}

// rowProblem describes why a row would be skipped, empty when importable
func rowProblem(row []string) string {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	if cell(0) == "" {
		return "missing device_name"
	}
	if q, err := strconv.Atoi(cell(1)); err != nil || q <= 0 {
		return "invalid quantity"
	}
	if cell(4) == "" {
		return "missing location"
	}
	if c, err := strconv.ParseFloat(cell(5), 64); err != nil || c < 0 {
		return "invalid cost"
	}
	return ""
}

func (s *Server) uploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	department := strings.TrimSpace(r.FormValue("department"))
	if department == "" {
		writeError(w, http.StatusBadRequest, "Department is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	rows, err := readRows(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read file: "+err.Error())
		return
	}

	warnings := []string{}
	valid := 0
	for i, row := range rows {
		if p := rowProblem(row); p != "" {
			warnings = append(warnings, fmt.Sprintf("Row %d: %s", i+2, p))
			continue
		}
		valid++
	}

	s.mu.Lock()
	created := s.addToHierarchy(department, "", "")
	if created {
		s.recomputeStats()
	}
	id := generateID()
	s.uploads[id] = &upload{department: department, rows: rows, created: created}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, model.ValidationResult{
		FileID:            id,
		Stats:             model.UploadStats{TotalRows: len(rows), ValidRows: valid},
		Warnings:          warnings,
		DepartmentCreated: created,
	})
}

func (s *Server) importFile(w http.ResponseWriter, r *http.Request) {
	var req model.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	up, ok := s.uploads[req.FileID]
	if !ok {
		writeError(w, http.StatusNotFound, "File not found or expired")
		return
	}
	department := req.Department
	if department == "" {
		department = up.department
	}

	seen := map[string]bool{}
	for _, res := range s.resources {
		seen[res.Department+"|"+res.DeviceName+"|"+res.Location] = true
	}

	result := model.ImportResult{}
	for _, row := range up.rows {
		if rowProblem(row) != "" {
			result.SkippedCount++
			continue
		}
		key := department + "|" + strings.TrimSpace(row[0]) + "|" + strings.TrimSpace(row[4])
		if seen[key] {
			// duplicates are dropped without being counted
			continue
		}
		seen[key] = true

		qty, _ := strconv.Atoi(strings.TrimSpace(row[1]))
		cost, _ := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		res := model.Resource{
			ID:              generateID(),
			SlNo:            len(s.resources) + 1,
			DeviceName:      strings.TrimSpace(row[0]),
			Quantity:        qty,
			Description:     strings.TrimSpace(row[2]),
			ProcurementDate: strings.TrimSpace(row[3]),
			Location:        strings.TrimSpace(row[4]),
			Cost:            cost,
			Department:      department,
			CreatedBy:       s.user.Email,
		}
		s.resources = append(s.resources, res)
		s.addToHierarchy(department, res.Location, res.DeviceName)
		result.ImportedCount++
	}
	delete(s.uploads, req.FileID)
	s.recomputeStats()

	result.Message = fmt.Sprintf("Imported %d resources", result.ImportedCount)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) template(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	cw.Write(TemplateHeaders)
	cw.Write([]string{"Laptop", "10", "Dell Latitude", "2024-01-15", "Lab A", "55000"})
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="resource_import_template.csv"`)
	w.Write(buf.Bytes())
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	rows := s.filtered(r)
	includeStats := r.URL.Query().Get("include_stats") == "true"

	headers := []string{"Sl No", "Device Name", "Quantity", "Description", "Procurement Date", "Location", "Cost", "Department"}
	var data [][]string
	var total float64
	for _, res := range rows {
		total += res.Cost * float64(res.Quantity)
		data = append(data, []string{
			strconv.Itoa(res.SlNo), res.DeviceName, strconv.Itoa(res.Quantity), res.Description,
			res.ProcurementDate, res.Location, strconv.FormatFloat(res.Cost, 'f', 2, 64), res.Department,
		})
	}

	switch format {
	case "csv":
		var buf bytes.Buffer
		cw := csv.NewWriter(&buf)
		cw.Write(headers)
		cw.WriteAll(data)
		if includeStats {
			cw.Write([]string{"", "Total", strconv.Itoa(len(rows)), "", "", "", strconv.FormatFloat(total, 'f', 2, 64), ""})
		}
		cw.Flush()
		w.Header().Set("Content-Type", "text/csv")
		w.Write(buf.Bytes())
	case "excel":
		body, err := workbook("Resources", headers, data, includeStats, len(rows), total)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to build workbook")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Write(body)
	case "json":
		out := map[string]any{"resources": rows}
		if includeStats {
			out["statistics"] = model.ChatStatistics{TotalResources: len(rows), TotalCost: total}
		}
		writeJSON(w, http.StatusOK, out)
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprintf(w, "%%PDF-1.4\n%% campus assets: %d resources\n%%%%EOF\n", len(rows))
	default:
		writeError(w, http.StatusBadRequest, "Unsupported export format: "+format)
	}
}

// workbook renders rows as an XLSX document with a bold header row
func workbook(sheet string, headers []string, data [][]string, withStats bool, count int, total float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
	}
	if index, err := f.GetSheetIndex(sheet); err == nil {
		f.SetActiveSheet(index)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
	}
	for r, row := range data {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if withStats {
		stats := "Statistics"
		if _, err := f.NewSheet(stats); err != nil {
			return nil, err
		}
		f.SetCellValue(stats, "A1", "Total Resources")
		f.SetCellValue(stats, "B1", count)
		f.SetCellValue(stats, "A2", "Total Cost")
		f.SetCellValue(stats, "B2", total)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := model.EmptyDashboard()
	devices, locations := map[string]bool{}, map[string]int{}
	byDept := map[string]int{}
	for _, res := range s.resources {
		value := res.Cost * float64(res.Quantity)
		out.Overview.TotalResources++
		out.Overview.TotalQuantity += res.Quantity
		out.Overview.TotalValue += value
		devices[res.DeviceName] = true
		locations[res.Location]++
		byDept[res.Department]++
		if res.Cost > out.FinancialMetrics.MostExpensiveItem {
			out.FinancialMetrics.MostExpensiveItem = res.Cost
			out.TopPerformers.MostExpensiveItem = model.ExpensiveItem{DeviceName: res.DeviceName, Cost: res.Cost, Department: res.Department}
		}
	}
	out.Overview.TotalDepartments = len(s.options.Departments)
	out.Overview.TotalUsers = 1
	out.Overview.UniqueDevices = len(devices)
	out.Overview.UniqueLocations = len(locations)
	out.FinancialMetrics.TotalAssetValue = out.Overview.TotalValue
	if out.Overview.TotalResources > 0 {
		out.FinancialMetrics.AverageCostPerItem = out.Overview.TotalValue / float64(out.Overview.TotalQuantity)
		out.FinancialMetrics.CostPerResource = out.Overview.TotalValue / float64(out.Overview.TotalResources)
	}

	names := make([]string, 0, len(byDept))
	for n := range byDept {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if byDept[n] > out.TopPerformers.LeadingDepartment.ResourceCount {
			out.TopPerformers.LeadingDepartment = model.NamedCount{Name: n, ResourceCount: byDept[n]}
		}
	}
	out.UtilizationMetrics.TotalLocations = len(locations)
	if len(locations) > 0 {
		out.UtilizationMetrics.AvgResourcesPerLocation = float64(out.Overview.TotalResources) / float64(len(locations))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) departmentAnalytics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDept := map[string]*model.DepartmentAnalytic{}
	out := model.DepartmentAnalytics{Departments: []model.DepartmentAnalytic{}}
	order := []string{}
	for _, res := range s.resources {
		d, ok := byDept[res.Department]
		if !ok {
			d = &model.DepartmentAnalytic{Name: res.Department}
			byDept[res.Department] = d
			order = append(order, res.Department)
		}
		d.Metrics.TotalResources++
		d.Metrics.TotalQuantity += res.Quantity
		d.Metrics.TotalCost += res.Cost * float64(res.Quantity)
	}
	for _, name := range order {
		out.Departments = append(out.Departments, *byDept[name])
	}
	sort.SliceStable(out.Departments, func(i, j int) bool {
		a, b := out.Departments[i].Metrics, out.Departments[j].Metrics
		if a.TotalResources != b.TotalResources {
			return a.TotalResources > b.TotalResources
		}
		return a.TotalCost > b.TotalCost
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) costAnalysis(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byDevice := map[string]*model.DeviceTypeCost{}
	costs := []model.DeviceTypeCost{}
	order := []string{}
	for _, res := range s.resources {
		d, ok := byDevice[res.DeviceName]
		if !ok {
			d = &model.DeviceTypeCost{DeviceName: res.DeviceName}
			byDevice[res.DeviceName] = d
			order = append(order, res.DeviceName)
		}
		d.TotalQuantity += res.Quantity
		d.TotalCost += res.Cost * float64(res.Quantity)
	}
	for _, name := range order {
		costs = append(costs, *byDevice[name])
	}
	sort.SliceStable(costs, func(i, j int) bool { return costs[i].TotalCost > costs[j].TotalCost })

	var out model.CostAnalysis
	out.CostAnalysis.DeviceTypeCosts = costs
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) utilizationMetrics(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out model.UtilizationReport
	out.Metrics.Devices = []model.DeviceUtilization{}
	out.Metrics.Locations = []model.LocationDensity{}
	devices, locations := map[string]int{}, map[string]int{}
	for _, res := range s.resources {
		if i, ok := devices[res.DeviceName]; ok {
			out.Metrics.Devices[i].TotalQuantity += res.Quantity
		} else {
			devices[res.DeviceName] = len(out.Metrics.Devices)
			out.Metrics.Devices = append(out.Metrics.Devices, model.DeviceUtilization{DeviceName: res.DeviceName, TotalQuantity: res.Quantity})
		}
		if i, ok := locations[res.Location]; ok {
			out.Metrics.Locations[i].ResourceCount++
		} else {
			locations[res.Location] = len(out.Metrics.Locations)
			out.Metrics.Locations = append(out.Metrics.Locations, model.LocationDensity{Location: res.Location, ResourceCount: 1, Department: res.Department})
		}
	}
	sort.SliceStable(out.Metrics.Devices, func(i, j int) bool {
		return out.Metrics.Devices[i].TotalQuantity > out.Metrics.Devices[j].TotalQuantity
	})
	sort.SliceStable(out.Metrics.Locations, func(i, j int) bool {
		return out.Metrics.Locations[i].ResourceCount > out.Metrics.Locations[j].ResourceCount
	})
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) aiStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, model.AIStatus{GroqAPIConfigured: s.aiOnline})
}

func (s *Server) aiChat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var hits []model.Resource
	var total float64
	for _, res := range s.resources {
		if strings.Contains(strings.ToLower(req.Query), strings.ToLower(res.Department)) {
			hits = append(hits, res)
			total += res.Cost * float64(res.Quantity)
		}
	}
	sessionID := "chat-1"
	if req.SessionID != nil && *req.SessionID != "" {
		sessionID = *req.SessionID
	}
	writeJSON(w, http.StatusOK, model.ChatResponse{
		Response:   fmt.Sprintf("Found %d matching resources.", len(hits)),
		Resources:  hits,
		Statistics: &model.ChatStatistics{TotalResources: len(hits), TotalCost: total},
		SessionID:  sessionID,
	})
}

func (s *Server) aiCRUD(w http.ResponseWriter, r *http.Request) {
	var req model.CRUDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Instruction) == "" || strings.TrimSpace(req.Department) == "" {
		writeError(w, http.StatusBadRequest, "Instruction and department are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.options.Department(req.Department) == nil {
		writeError(w, http.StatusBadRequest, "Department not found: "+req.Department)
		return
	}
	writeJSON(w, http.StatusOK, model.CRUDResponse{
		Operation: "CREATE",
		Details:   fmt.Sprintf("Applied %q to %s", req.Instruction, req.Department),
	})
}
