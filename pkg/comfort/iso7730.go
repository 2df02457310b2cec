package comfort

import (
	"fmt"
	"math"
)

var ErrNoConvergence = fmt.Errorf("clothing surface temperature did not converge")

const maxIterations = 150

// PMVPPD evaluates the ISO 7730 analytical model. External work is taken as zero.
//
//	tdb  dry-bulb air temperature [°C]
//	tr   mean radiant temperature [°C]
//	vr   relative air speed [m/s]
//	rh   relative humidity [%]
//	met  metabolic rate [met]
//	clo  clothing insulation [clo]
func PMVPPD(tdb, tr, vr, rh, met, clo float64) (pmv, ppd float64, err error) {
	pa := rh * 10 * math.Exp(16.6536-4030.183/(tdb+235))

	icl := 0.155 * clo
	m := met * 58.15
	mw := m

	fcl := 1.05 + 0.645*icl
	if icl <= 0.078 {
		fcl = 1 + 1.29*icl
	}

	hcf := 12.1 * math.Sqrt(vr)
	taa := tdb + 273
	tra := tr + 273
	tcla := taa + (35.5-tdb)/(3.5*icl+0.1)

	p1 := icl * fcl
	p2 := p1 * 3.96
	p3 := p1 * 100
	p4 := p1 * taa
	p5 := 308.7 - 0.028*mw + p2*math.Pow(tra/100, 4)

	xn := tcla / 100
	xf := tcla / 50
	hc := hcf
	for n := 0; math.Abs(xn-xf) > 0.00015; n++ {
		if n >= maxIterations {
			return 0, 0, ErrNoConvergence
		}
		xf = (xf + xn) / 2
		hcn := 2.38 * math.Pow(math.Abs(100*xf-taa), 0.25)
		hc = math.Max(hcf, hcn)
		xn = (p5 + p4*hc - p2*math.Pow(xf, 4)) / (100 + p3*hc)
	}
	tcl := 100*xn - 273

	hl1 := 3.05 * 0.001 * (5733 - 6.99*mw - pa)
	hl2 := 0.0
	if mw > 58.15 {
		hl2 = 0.42 * (mw - 58.15)
	}
	hl3 := 1.7 * 0.00001 * m * (5867 - pa)
	hl4 := 0.0014 * m * (34 - tdb)
	hl5 := 3.96 * fcl * (math.Pow(xn, 4) - math.Pow(tra/100, 4))
	hl6 := fcl * hc * (tcl - tdb)

	ts := 0.303*math.Exp(-0.036*m) + 0.028
	pmv = ts * (mw - hl1 - hl2 - hl3 - hl4 - hl5 - hl6)
	ppd = 100 - 95*math.Exp(-0.03353*math.Pow(pmv, 4)-0.2179*math.Pow(pmv, 2))
	return pmv, ppd, nil
}

// RelativeAirSpeed adds the air movement caused by body motion above 1 met.
func RelativeAirSpeed(v, met float64) float64 {
	if met > 1 {
		return v + 0.3*(met-1)
	}
	return v
}

// DynamicClothing reduces insulation for pumping effects above 1.2 met.
func DynamicClothing(clo, met float64) float64 {
	if met > 1.2 {
		return clo * (0.6 + 0.4/met)
	}
	return clo
}
