package images

import "fmt"

// Model describes an enhancement model exposed by the API.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ModelLOLReal is the single placeholder model. The pipeline behind it is a
// fixed linear transform with no learned behavior.
const ModelLOLReal = "lol_real"

// Registry lists the models the service can apply.
type Registry struct {
	models map[string]Model
}

// NewRegistry constructs the registry with the built-in model set.
func NewRegistry() *Registry {
	return &Registry{
		models: map[string]Model{
			ModelLOLReal: {
				ID:          ModelLOLReal,
				Name:        "LOL Real Dataset",
				Description: "Trained on real low light images",
			},
		},
	}
}

// Available returns the models in a stable order.
func (r *Registry) Available() []Model {
	models := make([]Model, 0, len(r.models))
	if m, ok := r.models[ModelLOLReal]; ok {
		models = append(models, m)
	}
	return models
}

// Resolve returns the model for id or an error when it is unknown.
func (r *Registry) Resolve(id string) (Model, error) {
	model, ok := r.models[id]
	if !ok {
		return Model{}, fmt.Errorf("images: model %s not loaded", id)
	}
	return model, nil
}
