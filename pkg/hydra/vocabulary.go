// Package hydra implements the JSON-LD/Hydra message mappers.
// See https://www.hydra-cg.com/spec/latest/core/ for the vocabulary.
package hydra

// MediaType is the content type of JSON-LD documents.
const MediaType = "application/ld+json"

// Contexts.
const (
	SchemaOrg = "http://schema.org/"
	HydraCore = "https://www.w3.org/ns/hydra/core"
)

// JSON-LD keywords.
const (
	KeyContext = "@context"
	KeyID      = "@id"
	KeyType    = "@type"
	KeyVocab   = "@vocab"
	KeyReverse = "@reverse"
)

// Hydra terms.
const (
	TypeCollection        = "Collection"
	TypePartialView       = "PartialCollectionView"
	TypeOperation         = "Operation"
	TypeClass             = "Class"
	TypeSupportedProperty = "SupportedProperty"
	TypeAPIDocumentation  = "ApiDocumentation"
	TypeError             = "Error"

	TermMember             = "member"
	TermTotalItems         = "totalItems"
	TermNumberOfItems      = "numberOfItems"
	TermView               = "view"
	TermFirst              = "first"
	TermLast               = "last"
	TermNext               = "next"
	TermPrevious           = "previous"
	TermOperation          = "operation"
	TermMethod             = "method"
	TermExpects            = "expects"
	TermTarget             = "target"
	TermTitle              = "title"
	TermDescription        = "description"
	TermStatusCode         = "statusCode"
	TermProperty           = "property"
	TermRequired           = "required"
	TermRange              = "range"
	TermSupportedProperty  = "supportedProperty"
	TermSupportedClass     = "supportedClass"
	TermSupportedOperation = "supportedOperation"
	TermEntrypoint         = "entrypoint"
)
