package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"statlab/app"
	"statlab/domain/core"
	"statlab/domain/retail"
)

func (a *App) handleHome(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "home.html", pageData{Title: "statlab", Active: "home", Data: a.home})
}

func (a *App) handleResampling(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Resampling", Active: "resampling", Form: formValues(r,
		"group_a", joinFloats(app.DefaultGroupA),
		"group_b", joinFloats(app.DefaultGroupB),
		"trials", strconv.Itoa(a.settings.Trials),
		"seed", strconv.FormatInt(a.settings.Seed, 10),
	)}

	req := app.ResamplingRequest{}
	var err error
	if req.GroupA, err = parseFloats("group_a", data.Form["group_a"]); err != nil {
		a.renderError(w, "resampling.html", data, err)
		return
	}
	if req.GroupB, err = parseFloats("group_b", data.Form["group_b"]); err != nil {
		a.renderError(w, "resampling.html", data, err)
		return
	}
	if req.Trials, req.Seed, err = trialsAndSeed(data.Form); err != nil {
		a.renderError(w, "resampling.html", data, err)
		return
	}

	release, ok := a.acquireSlot(w, r, "resampling.html", data)
	if !ok {
		return
	}
	result, err := a.pages.Resampling.Run(r.Context(), req)
	release()
	if err != nil {
		a.renderError(w, "resampling.html", data, err)
		return
	}
	data.Data = result
	a.renderTemplate(w, "resampling.html", data)
}

func (a *App) handleAnova(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "ANOVA", Active: "anova", Form: formValues(r,
		"trials", strconv.Itoa(a.settings.AnovaTrials),
		"seed", strconv.FormatInt(a.settings.Seed, 10),
	)}

	req := app.AnovaRequest{}
	var err error
	if req.Trials, req.Seed, err = trialsAndSeed(data.Form); err != nil {
		a.renderError(w, "anova.html", data, err)
		return
	}
	release, ok := a.acquireSlot(w, r, "anova.html", data)
	if !ok {
		return
	}
	result, err := a.pages.Anova.Run(r.Context(), req)
	release()
	if err != nil {
		a.renderError(w, "anova.html", data, err)
		return
	}
	data.Data = result
	a.renderTemplate(w, "anova.html", data)
}

func (a *App) handleCategorical(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Categorical", Active: "categorical", Form: formValues(r,
		"a_converted", strconv.Itoa(app.DefaultVariantA.Converted),
		"a_total", strconv.Itoa(app.DefaultVariantA.Total),
		"b_converted", strconv.Itoa(app.DefaultVariantB.Converted),
		"b_total", strconv.Itoa(app.DefaultVariantB.Total),
		"trials", strconv.Itoa(a.settings.Trials),
		"seed", strconv.FormatInt(a.settings.Seed, 10),
	)}

	req := app.CategoricalRequest{}
	counts := []*int{&req.VariantA.Converted, &req.VariantA.Total, &req.VariantB.Converted, &req.VariantB.Total}
	for i, key := range []string{"a_converted", "a_total", "b_converted", "b_total"} {
		v, err := strconv.Atoi(data.Form[key])
		if err != nil {
			a.renderError(w, "categorical.html", data, core.NewValidationError(key, "must be an integer"))
			return
		}
		*counts[i] = v
	}
	var err error
	if req.Trials, req.Seed, err = trialsAndSeed(data.Form); err != nil {
		a.renderError(w, "categorical.html", data, err)
		return
	}

	release, ok := a.acquireSlot(w, r, "categorical.html", data)
	if !ok {
		return
	}
	result, err := a.pages.Categorical.Run(r.Context(), req)
	release()
	if err != nil {
		a.renderError(w, "categorical.html", data, err)
		return
	}
	data.Data = result
	a.renderTemplate(w, "categorical.html", data)
}

// acquireSlot waits for one of the shared permutation slots. When none frees
// up before the request ends the page is rendered with the error instead.
func (a *App) acquireSlot(w http.ResponseWriter, r *http.Request, name string, data pageData) (func(), bool) {
	release, err := a.pages.Limiter.Acquire(r.Context())
	if err != nil {
		a.renderError(w, name, data, err)
		return nil, false
	}
	return release, true
}

// retailView is everything the retail page shows for one business
type retailView struct {
	Businesses      []string
	Business        string
	Window          int
	Monthly         []retail.MonthlySales
	Index           []retail.YearIndex
	Growth          []retail.YearGrowth
	Autocorrelation *app.Autocorrelation
	Seasonality     *retail.Seasonality
}

func (a *App) handleRetail(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "US retail sales", Active: "retail", Form: formValues(r,
		"business", "",
		"window", strconv.Itoa(app.DefaultMovingAverageWindow),
	)}
	ctx := r.Context()
	svc := a.pages.Retail

	var view retailView
	var err error
	if view.Businesses, err = svc.Businesses(ctx); err != nil {
		a.renderError(w, "retail.html", data, err)
		return
	}
	if view.Business, err = svc.ResolveBusiness(ctx, data.Form["business"]); err != nil {
		a.renderError(w, "retail.html", data, err)
		return
	}
	if view.Window, err = strconv.Atoi(data.Form["window"]); err != nil {
		a.renderError(w, "retail.html", data, core.NewValidationError("window", "must be an integer"))
		return
	}
	data.Form["business"] = view.Business

	if view.Monthly, err = svc.Monthly(ctx, view.Business, view.Window); err != nil {
		a.renderError(w, "retail.html", data, err)
		return
	}
	if view.Index, err = svc.Index(ctx, view.Business); err != nil {
		a.renderError(w, "retail.html", data, err)
		return
	}
	if view.Growth, err = svc.Growth(ctx, view.Business); err != nil {
		a.renderError(w, "retail.html", data, err)
		return
	}
	if view.Seasonality, err = svc.Seasonality(ctx, view.Business); err != nil {
		a.renderError(w, "retail.html", data, err)
		return
	}
	// A short series has no correlogram; the rest of the page still renders.
	if view.Autocorrelation, err = svc.Autocorrelation(ctx, view.Business, 0); err != nil {
		a.logger.Debug("autocorrelation for %s: %v", view.Business, err)
	}

	data.Data = view
	a.renderTemplate(w, "retail.html", data)
}

func (a *App) handleLaptops(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Laptop sales", Active: "laptops", Form: formValues(r,
		"bins", strconv.Itoa(app.DefaultConfigurationBins),
	)}
	bins, err := strconv.Atoi(data.Form["bins"])
	if err != nil {
		a.renderError(w, "laptops.html", data, core.NewValidationError("bins", "must be an integer"))
		return
	}
	report, err := a.pages.Laptops.Report(r.Context(), bins)
	if err != nil {
		a.renderError(w, "laptops.html", data, err)
		return
	}
	data.Data = report
	a.renderTemplate(w, "laptops.html", data)
}

func (a *App) handleMowers(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Riding mowers", Active: "mowers", Form: formValues(r,
		"income", strconv.FormatFloat(app.DefaultIncomeLine, 'f', -1, 64),
		"lot_size", strconv.FormatFloat(app.DefaultLotSizeLine, 'f', -1, 64),
	)}
	income, err := strconv.ParseFloat(data.Form["income"], 64)
	if err != nil {
		a.renderError(w, "mowers.html", data, core.NewValidationError("income", "must be a number"))
		return
	}
	lotSize, err := strconv.ParseFloat(data.Form["lot_size"], 64)
	if err != nil {
		a.renderError(w, "mowers.html", data, core.NewValidationError("lot_size", "must be a number"))
		return
	}
	report, err := a.pages.Mowers.Report(r.Context(), income, lotSize)
	if err != nil {
		a.renderError(w, "mowers.html", data, err)
		return
	}
	data.Data = report
	a.renderTemplate(w, "mowers.html", data)
}

// formValues reads the named query parameters, falling back to the given
// defaults; pairs alternate name and default.
func formValues(r *http.Request, pairs ...string) map[string]string {
	out := make(map[string]string, len(pairs)/2)
	query := r.URL.Query()
	for i := 0; i+1 < len(pairs); i += 2 {
		v := strings.TrimSpace(query.Get(pairs[i]))
		if v == "" {
			v = pairs[i+1]
		}
		out[pairs[i]] = v
	}
	return out
}

// parseFloats parses a comma or whitespace separated list of numbers
func parseFloats(field, raw string) ([]float64, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, core.NewValidationError(field, fmt.Sprintf("%q is not a number", f))
		}
		out = append(out, v)
	}
	return out, nil
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func trialsAndSeed(form map[string]string) (int, *int64, error) {
	trials, err := strconv.Atoi(form["trials"])
	if err != nil {
		return 0, nil, core.NewValidationError("trials", "must be an integer")
	}
	seed, err := strconv.ParseInt(form["seed"], 10, 64)
	if err != nil {
		return 0, nil, core.NewValidationError("seed", "must be an integer")
	}
	return trials, &seed, nil
}
