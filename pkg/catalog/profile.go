package catalog

// Status is the terminal state of one product's pipeline run.
type Status string

// Profile statuses.
const (
	// StatusSuccess means every stage completed and parsed cleanly.
	StatusSuccess Status = "success"
	// StatusPartial means at least one stage degraded and the merged profile
	// still has unfilled attributes.
	StatusPartial Status = "partial"
	// StatusFailed means a collaborator or I/O error aborted the item.
	StatusFailed Status = "failed"
)

// Item identifies one product to process: a name and the folder holding its
// images. ImagePaths is populated by the filesystem collaborator before the
// first stage runs.
type Item struct {
	Name       string   `json:"name"`
	Folder     string   `json:"folder"`
	ImagePaths []string `json:"image_paths,omitempty"`
}

// Profile is the finished result for one product. Attributes holds exactly
// one record per catalog entry, in catalog order.
type Profile struct {
	ProductName  string   `json:"product_name"`
	Attributes   []Record `json:"attributes"`
	Description  string   `json:"description"`
	Status       Status   `json:"status"`
	Error        string   `json:"error,omitempty"`
	StageReached int      `json:"stage_reached"`
	ImageCount   int      `json:"image_count"`
	ImagePaths   []string `json:"image_paths,omitempty"`
}

// Filled returns how many of the profile's attributes carry a value.
func (p *Profile) Filled() int {
	n := 0
	for _, rec := range p.Attributes {
		if rec.Filled() {
			n++
		}
	}
	return n
}

// Attribute returns the record for the named attribute, if present.
func (p *Profile) Attribute(name string) (Record, bool) {
	for _, rec := range p.Attributes {
		if rec.Name == name {
			return rec, true
		}
	}
	return Record{}, false
}

// FailedProfile builds the profile shape used when an item never produced
// attributes: status failed, the error preserved, and no records.
func FailedProfile(name string, stageReached int, err error) *Profile {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Profile{
		ProductName:  name,
		Status:       StatusFailed,
		Error:        msg,
		StageReached: stageReached,
	}
}
