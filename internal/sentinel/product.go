package sentinel

import "fmt"

// Product is one collection of the Copernicus process API rendered to a single float band.
type Product struct {
	Name       string
	Collection string
	DataFilter map[string]any
	Processing map[string]any
	Evalscript string
	// Resolution is the ground sample distance (m) of the co-registered output grid.
	Resolution float64
}

// S1VV is Sentinel-1 GRD VV backscatter (sigma0) in decibels.
var S1VV = Product{
	Name:       "s1_vv",
	Collection: "sentinel-1-grd",
	DataFilter: map[string]any{
		"acquisitionMode": "IW",
		"polarization":    "DV",
		"resolution":      "HIGH",
		"mosaickingOrder": "mostRecent",
	},
	Processing: map[string]any{
		"orthorectify": true,
		"demInstance":  "COPERNICUS_30",
		"backCoeff":    "SIGMA0_ELLIPSOID",
	},
	Evalscript: `
    //VERSION=3
    function setup() {
      return {
        input: ["VV", "dataMask"],
        output: { id: "default", bands: 1, sampleType: SampleType.FLOAT32 },
      }
    }

    function evaluatePixel(sample) {
      if (sample.dataMask === 0 || sample.VV <= 0) {
        return [NaN];
      }
      return [10 * Math.log(sample.VV) / Math.LN10];
    }
  `,
	Resolution: 10,
}

// DEM is the Copernicus 30 m elevation model.
var DEM = Product{
	Name:       "dem",
	Collection: "dem",
	DataFilter: map[string]any{"demInstance": "COPERNICUS_30"},
	Evalscript: `
    //VERSION=3
    function setup() {
      return {
        input: ["DEM", "dataMask"],
        output: { id: "default", bands: 1, sampleType: SampleType.FLOAT32 },
      }
    }

    function evaluatePixel(sample) {
      if (sample.dataMask === 0) {
        return [NaN];
      }
      return [sample.DEM];
    }
  `,
	Resolution: 30,
}

var products = map[string]Product{
	S1VV.Name: S1VV,
	DEM.Name:  DEM,
}

func ProductByName(name string) (Product, error) {
	p, ok := products[name]
	if !ok {
		return Product{}, fmt.Errorf("unknown product %q", name)
	}
	return p, nil
}
