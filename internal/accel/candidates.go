package accel

// candidate is one entry of the ordered probe list.
type candidate struct {
	method   Method
	vendor   string
	priority int
}

// vendorCandidates maps platform → vendor → methods in preference order.
// Data, not branching code: the probe loop is identical on every platform.
var vendorCandidates = map[string]map[string][]Method{
	"windows": {
		"nvidia": {MethodCUDA, MethodNVENC},
		"intel":  {MethodQSV, MethodDXVA2, MethodD3D11VA},
		"amd":    {MethodAMF, MethodDXVA2, MethodD3D11VA},
	},
	"linux": {
		"nvidia": {MethodCUDA, MethodNVENC},
		"intel":  {MethodQSV, MethodVAAPI},
		"amd":    {MethodVAAPI, MethodAMF},
	},
	"darwin": {
		"apple":  {MethodVideoToolbox},
		"nvidia": {MethodCUDA},
		"intel":  {MethodVideoToolbox, MethodQSV},
		"amd":    {MethodVideoToolbox},
	},
}

// fallbackCandidates are always appended after vendor-specific methods, so a
// machine with undetected hardware still gets a chance at acceleration.
var fallbackCandidates = map[string][]Method{
	"windows": {MethodDXVA2, MethodD3D11VA, MethodOpenCL},
	"linux":   {MethodVAAPI, MethodOpenCL},
	"darwin":  {MethodVideoToolbox, MethodOpenCL},
}

// universalCandidates are used when vendor detection failed entirely.
var universalCandidates = map[string][]Method{
	"windows": {MethodDXVA2, MethodD3D11VA, MethodCUDA, MethodQSV, MethodOpenCL},
	"linux":   {MethodVAAPI, MethodCUDA, MethodQSV, MethodOpenCL},
	"darwin":  {MethodVideoToolbox, MethodOpenCL},
}

// candidateList builds the ordered, de-duplicated probe list for a platform
// and detected vendor set. Vendor-specific methods always precede the
// platform-generic fallbacks; priority is the position in the list.
func candidateList(platform string, vendors Vendors) []candidate {
	table, ok := vendorCandidates[platform]
	if !ok {
		table = vendorCandidates["linux"]
	}

	type pick struct {
		vendor  string
		methods []Method
	}
	var picks []pick
	if vendors.Apple {
		picks = append(picks, pick{"Apple", table["apple"]})
	}
	if vendors.NVIDIA {
		picks = append(picks, pick{"NVIDIA", table["nvidia"]})
	}
	if vendors.Intel {
		picks = append(picks, pick{"Intel", table["intel"]})
	}
	if vendors.AMD {
		picks = append(picks, pick{"AMD", table["amd"]})
	}
	if !vendors.Any() {
		picks = append(picks, pick{"Generic", universalCandidates[fallbackKey(platform)]})
	}
	picks = append(picks, pick{"Generic", fallbackCandidates[fallbackKey(platform)]})

	seen := make(map[Method]bool)
	var list []candidate
	for _, p := range picks {
		for _, m := range p.methods {
			if seen[m] {
				continue
			}
			seen[m] = true
			list = append(list, candidate{method: m, vendor: p.vendor, priority: len(list) + 1})
		}
	}
	return list
}

func fallbackKey(platform string) string {
	if _, ok := fallbackCandidates[platform]; ok {
		return platform
	}
	return "linux"
}
