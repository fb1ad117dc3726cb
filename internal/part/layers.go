package part

// LayerRef points from a layer role to the part holding it.
type LayerRef struct {
	RoleID string `json:"roleId"`
	PartID string `json:"partId"`
}

// IndexLayers returns one LayerRef per layer part in parts, in input order.
// Non-layer and unregistered types are skipped. Duplicate roles are passed
// through as they are.
func (r *Registry) IndexLayers(parts []Info) []LayerRef {
	refs := make([]LayerRef, 0, len(parts))
	for _, p := range parts {
		if !r.IsLayer(p.TypeID) {
			continue
		}
		refs = append(refs, LayerRef{RoleID: p.RoleID, PartID: p.ID})
	}
	return refs
}
