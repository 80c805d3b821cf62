package jsondoc

// Package jsondoc provides:
//
// - An order-preserving document model for JSON configuration files
//   (Document wrapping a closed Value union, root always an object)
// - A closed set of structural edit operations (set/add/delete/insert/move)
//   applied functionally; each yields a new snapshot or an explicit error
// - Diff-minimal re-serialization: bytes outside edited regions are copied
//   verbatim from the original source text
// - A stable finding model via Issues (path, code, message, severity)
//
// Design policy:
// - Keep only public APIs in the root package; put token-level plumbing under internal/.
// - Place the schema subset and validator under schema/, the RFC 6902 bridge under
//   jsonpatch/, and the CLI under cmd/jsondoc.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  doc, err := jsondoc.ParseDocument(data)
//  doc, err = doc.Apply(jsondoc.SetValue{At: jsondoc.Path{"a", "b"}, Value: jsondoc.Int(2)})
//  out, err := doc.Serialize()
//
//  iss := schema.Validate(doc.Content(), sch)
