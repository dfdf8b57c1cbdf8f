package hydra

import "github.com/artpar/hyperapi/core/mapper"

// Format bundles the Hydra mappers.
type Format struct{}

var _ mapper.Format = Format{}

func (Format) MediaType() string                         { return MediaType }
func (Format) SingleModel() mapper.SingleModelMapper     { return SingleModelMapper{} }
func (Format) Page() mapper.PageMapper                   { return PageMapper{} }
func (Format) Form() mapper.FormMapper                   { return FormMapper{} }
func (Format) Error() mapper.ErrorMapper                 { return ErrorMapper{} }
func (Format) Documentation() mapper.DocumentationMapper { return DocumentationMapper{} }
