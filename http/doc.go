// Package http exposes the formfill pipeline over HTTP.
//
// # Endpoints
//
//	POST /fill_pdf  JSON object of field name to string (or null)
//	GET  /fields    JSON list of the template's fields
//	GET  /healthz   "ok"
//
// A fill request moves through the pipeline in order: the body is decoded,
// the schema is fetched and the values validated (ValidationMiddleware), then
// the template is fetched, filled and returned as application/pdf.
//
// # Responses
//
// Rejected submissions get a 400 with the violating fields:
//
//	{"error":"Invalid values found","invalidFields":[{"field":"sex","value":"X","allowed":["M","F"]}]}
//
// Failures of the individual phases answer 500 with a plain text message:
//
//   - schema fetch: "Error while downloading validation schema"
//   - template fetch: "Error while downloading pdf template"
//   - fill: "Error while filling pdf"
//
// Malformed bodies get a JSON ErrorResponse with error "invalid_body".
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{MaxBodySize: 1 << 20}
//	handler := http.NewHandler(&handlerCfg, service)
//	router := handler.Router()
//	http.ListenAndServe(":8080", router)
//
// The service parameter must implement the Service interface with Validate,
// Fill and Fields methods; *formfill.Service does.
//
// # Middleware
//
// Every request passes RequestID, which assigns or propagates X-Request-ID,
// and RequestLogger. CORS is applied when HandlerConfig.CORS.Enabled is set.
package http
