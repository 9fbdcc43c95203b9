// Package formfill fills PDF form templates with caller-supplied values after
// validating them against a schema kept in object storage.
//
// A request flows through a single linear pipeline:
//
//	fetch schema -> validate -> fetch template -> fill -> respond
//
// Both the schema and the template are fetched fresh from the object store on
// every request; nothing is cached between requests.
//
// # Key Components
//
//   - Service: composes an ObjectStore and a FormFiller into the pipeline
//   - ObjectStore: fetches a named object from a bucket (GCS, S3, Supabase,
//     Stowry or a local directory, see the storage package)
//   - FormFiller: sets field values on a PDF form (see the pdfform package)
//   - Validate: pure check of submitted values against a FieldSchema
//
// # Example Usage
//
//	filler, err := pdfform.NewFiller("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	service, err := formfill.NewService(store, filler, formfill.ServiceConfig{
//	    Bucket:         "forms",
//	    TemplateObject: "w9.pdf",
//	    SchemaObject:   "w9.json",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := service.Validate(ctx, values)
//	if err == nil && result.Valid() {
//	    pdf, err = service.Fill(ctx, values)
//	}
//
// See the http package for the REST API built on top of Service.
package formfill
