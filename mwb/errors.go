package mwb

import "errors"

var (
	// ErrNotWorkbenchModel indicates the file is not a MySQL Workbench model.
	ErrNotWorkbenchModel = errors.New("not a MySQL Workbench model")
	// ErrDocumentMissing indicates the archive carries no document.mwb.xml.
	ErrDocumentMissing = errors.New("document.mwb.xml not found in model archive")
	// ErrSchemaNotFound indicates the requested schema is not part of the model.
	ErrSchemaNotFound = errors.New("schema not found in model")
)
