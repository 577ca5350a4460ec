package gocas

import (
	"math/big"
	"strings"
)

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"epsilon": `\epsilon`, "zeta": `\zeta`, "eta": `\eta`, "theta": `\theta`,
	"iota": `\iota`, "kappa": `\kappa`, "lambda": `\lambda`, "mu": `\mu`,
	"nu": `\nu`, "xi": `\xi`, "rho": `\rho`, "sigma": `\sigma`, "tau": `\tau`,
	"upsilon": `\upsilon`, "phi": `\phi`, "chi": `\chi`, "psi": `\psi`,
	"omega": `\omega`, "Gamma": `\Gamma`, "Delta": `\Delta`, "Theta": `\Theta`,
	"Lambda": `\Lambda`, "Xi": `\Xi`, "Pi": `\Pi`, "Sigma": `\Sigma`,
	"Phi": `\Phi`, "Psi": `\Psi`, "Omega": `\Omega`,
}

func latexName(name string) string {
	base, sub, hasSub := strings.Cut(name, "_")
	if g, ok := greek[base]; ok {
		base = g
	}
	if hasSub && sub != "" {
		return base + "_{" + latexName(sub) + "}"
	}
	return base
}

// LaTeX renders x for typesetting, e.g. "\frac{\sqrt{2} \sqrt{\pi}}{2}".
func (e *Engine) LaTeX(x Expr) string {
	n := e.node(x)
	switch n.kind {
	case KindNumber:
		return ratLaTeX(n.num)
	case KindSymbol:
		return latexName(n.sym.name)
	case KindConstant:
		switch n.cnst {
		case ConstPi:
			return `\pi`
		case ConstI:
			return "i"
		case ConstInfinity:
			return `\infty`
		case ConstComplexInfinity:
			return `\tilde{\infty}`
		}
		return `\text{NaN}`
	case KindAdd:
		var b strings.Builder
		for i, t := range n.args {
			s := e.LaTeX(t)
			switch {
			case i == 0:
				b.WriteString(s)
			case strings.HasPrefix(s, "-"):
				b.WriteString(" - ")
				b.WriteString(s[1:])
			default:
				b.WriteString(" + ")
				b.WriteString(s)
			}
		}
		return b.String()
	case KindMul:
		return e.mulLaTeX(x)
	case KindPow:
		return e.powLaTeX(n.args[0], n.args[1])
	case KindExp:
		if x == e.e {
			return "e"
		}
		return "e^{" + e.LaTeX(n.args[0]) + "}"
	case KindSin, KindCos, KindLog:
		return `\` + n.kind.String() + `\left(` + e.LaTeX(n.args[0]) + `\right)`
	case KindApply:
		parts := make([]string, len(n.args))
		for i, a := range n.args {
			parts[i] = e.LaTeX(a)
		}
		name := latexName(n.name)
		if len([]rune(n.name)) > 1 && name == n.name {
			name = `\operatorname{` + n.name + `}`
		}
		return name + `\left(` + strings.Join(parts, ", ") + `\right)`
	}
	return "?"
}

func ratLaTeX(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(r)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return sign + `\frac{` + v.Num().String() + "}{" + v.Denom().String() + "}"
}

func (e *Engine) wrapLaTeX(x Expr, min int) string {
	s := e.LaTeX(x)
	if e.prec(x) < min {
		return `\left(` + s + `\right)`
	}
	return s
}

func (e *Engine) powLaTeX(b, x Expr) string {
	if r := e.rat(x); r != nil {
		switch {
		case r.Sign() < 0:
			return `\frac{1}{` + e.rootLaTeX(b, new(big.Rat).Neg(r)) + "}"
		case r.Num().Cmp(big.NewInt(1)) == 0 && !r.IsInt():
			return e.rootLaTeX(b, r)
		}
	}
	return e.wrapLaTeX(b, precPow+1) + "^{" + e.LaTeX(x) + "}"
}

// rootLaTeX prints b^r for r > 0, using radicals for unit fractions.
func (e *Engine) rootLaTeX(b Expr, r *big.Rat) string {
	switch {
	case r.Cmp(ratOne) == 0:
		return e.LaTeX(b)
	case r.Cmp(ratHalf) == 0:
		return `\sqrt{` + e.LaTeX(b) + "}"
	case r.Num().Cmp(big.NewInt(1)) == 0:
		return `\sqrt[` + r.Denom().String() + "]{" + e.LaTeX(b) + "}"
	}
	return e.wrapLaTeX(b, precPow+1) + "^{" + ratLaTeX(r) + "}"
}

func (e *Engine) mulLaTeX(x Expr) string {
	c, _ := e.splitCoeff(x)
	c = ratAbs(c)
	fs := e.args(x)
	if e.isNumber(fs[0]) {
		fs = fs[1:]
	}
	var num, den []string
	if c.Num().Cmp(big.NewInt(1)) != 0 {
		num = append(num, c.Num().String())
	}
	if !c.IsInt() {
		den = append(den, c.Denom().String())
	}
	for _, f := range fs {
		b, ex := e.asPow(f)
		if r := e.rat(ex); r != nil && r.Sign() < 0 {
			s := e.rootLaTeX(b, new(big.Rat).Neg(r))
			if r.Cmp(big.NewRat(-1, 1)) == 0 && e.prec(b) < precMul {
				s = `\left(` + e.LaTeX(b) + `\right)`
			}
			den = append(den, s)
			continue
		}
		num = append(num, e.wrapLaTeX(f, precMul))
	}
	sign := ""
	if e.isNegative(x) {
		sign = "-"
	}
	ns := strings.Join(num, " ")
	if ns == "" {
		ns = "1"
	}
	if len(den) == 0 {
		return sign + ns
	}
	return sign + `\frac{` + ns + "}{" + strings.Join(den, " ") + "}"
}
