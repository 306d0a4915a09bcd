// Package circuits provides reaction networks for common gene-regulatory
// circuits: constitutive expression, transcription and translation,
// activation and repression, autoregulation, feed-forward loops and a
// two-component dichotomous feedback system.
//
// Every circuit is returned as an ssa.NetworkBuilder so callers can inspect
// or export the configuration, tweak parameters, or build it directly.
package circuits

import (
	"fmt"
	"slices"

	"github.com/daniacca/stochchem/internal/ssa"
)

// Circuit is a named network constructor.
type Circuit struct {
	Name        string
	Description string
	Builder     func() *ssa.NetworkBuilder
}

var catalog = []Circuit{
	{"simple_gene_expression", "constitutive production and first-order degradation of one protein", SimpleGeneExpression},
	{"transcription_translation", "mRNA transcription, translation into protein, degradation of both", TranscriptionTranslation},
	{"activation", "protein expression activated by an external activator (Michaelis-Menten)", Activation},
	{"repression", "leaky protein expression repressed by an external repressor", Repression},
	{"negative_autoregulation", "protein repressing its own production (Hill, n=2)", NegativeAutoregulation},
	{"positive_autoregulation", "protein activating its own production (Hill, n=5), bistable", PositiveAutoregulation},
	{"feed_forward_loop", "coherent feed-forward loop X->Y->Z with X as external input", FeedForwardLoop},
	{"incoherent_feed_forward_loop", "X activates Y production while repressing it (dosage compensation)", IncoherentFeedForwardLoop},
	{"dichotomous_feedback", "two-component system, eight-channel reduction: kinase cycle and Hill output", DichotomousFeedback},
	{"dichotomous_feedback_full", "two-component system with regulator turnover, phosphatases and Hill output", DichotomousFeedbackFull},
}

// All returns every circuit sorted by name.
func All() []Circuit {
	out := slices.Clone(catalog)
	slices.SortFunc(out, func(a, b Circuit) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

// Lookup finds a circuit by name.
func Lookup(name string) (Circuit, bool) {
	for _, c := range catalog {
		if c.Name == name {
			return c, true
		}
	}
	return Circuit{}, false
}

// Build builds the named circuit with its default parameters and initial
// state.
func Build(name string) (*ssa.Network, ssa.State, error) {
	c, ok := Lookup(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown circuit %q", name)
	}
	return c.Builder().Build()
}

// SimpleGeneExpression is the birth-death process 0 -> X -> 0.
// Stationary mean beta/gamma.
func SimpleGeneExpression() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("simple_gene_expression").
		Species("X", "protein").
		Param("beta", 1.0).
		Param("gamma", 0.5).
		Channel(ssa.NewChannel("production").MassAction("beta").Produces("X", 1)).
		Channel(ssa.NewChannel("degradation").MassAction("gamma").Consumes("X", 1))
}

func TranscriptionTranslation() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("transcription_translation").
		Species("m", "mRNA").
		Species("p", "protein").
		Param("beta_m", 1.0).
		Param("gamma_m", 0.5).
		Param("beta_p", 1.0).
		Param("gamma_p", 0.5).
		Channel(ssa.NewChannel("transcription").MassAction("beta_m").Produces("m", 1)).
		Channel(ssa.NewChannel("mrna_degradation").MassAction("gamma_m").Consumes("m", 1)).
		Channel(ssa.NewChannel("translation").MassAction("beta_p").Requires("m", 1).Produces("p", 1)).
		Channel(ssa.NewChannel("protein_degradation").MassAction("gamma_p").Consumes("p", 1))
}

// Activation expresses P at beta0 * a/Kd / (1 + a/Kd) for a constant
// activator level a.
func Activation() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("activation").
		Species("P", "protein").
		Param("beta0", 1.0).
		Param("kd", 0.5).
		Param("gamma", 0.5).
		Param("a", 1.0).
		Channel(ssa.NewChannel("activated_production").MichaelisMenten("beta0", "kd").Input("a").Produces("P", 1)).
		Channel(ssa.NewChannel("degradation").MassAction("gamma").Consumes("P", 1))
}

// Repression expresses P at beta0 / (1 + r/Kd) plus a leak alpha0.
func Repression() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("repression").
		Species("P", "protein").
		Param("beta0", 1.0).
		Param("alpha0", 0.1).
		Param("kd", 0.5).
		Param("gamma", 0.5).
		Param("r", 1.0).
		Channel(ssa.NewChannel("repressed_production").HillRepression("beta0", "kd", "").Input("r").Produces("P", 1)).
		Channel(ssa.NewChannel("leaky_production").MassAction("alpha0").Produces("P", 1)).
		Channel(ssa.NewChannel("degradation").MassAction("gamma").Consumes("P", 1))
}

func NegativeAutoregulation() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("negative_autoregulation").
		Species("X", "self-repressing protein").
		Param("beta", 100.0).
		Param("gamma", 1.0).
		Param("k", 50.0).
		Param("n", 2.0).
		Channel(ssa.NewChannel("production").HillRepression("beta", "k", "n").Regulator("X").Produces("X", 1)).
		Channel(ssa.NewChannel("degradation").MassAction("gamma").Consumes("X", 1))
}

// PositiveAutoregulation has an absorbing state at X=0: production needs X.
// It starts above the Hill constant so runs can settle in the high state.
func PositiveAutoregulation() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("positive_autoregulation").
		Species("X", "self-activating protein").
		Param("beta", 10.0).
		Param("gamma", 1.0).
		Param("k", 3.0).
		Param("n", 5.0).
		Initial("X", 4).
		Channel(ssa.NewChannel("production").HillActivation("beta", "k", "n").Regulator("X").Produces("X", 1)).
		Channel(ssa.NewChannel("degradation").MassAction("gamma").Consumes("X", 1))
}

func FeedForwardLoop() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("feed_forward_loop").
		Species("Y", "intermediate regulator").
		Species("Z", "target").
		Param("x", 1.0).
		Param("k_xy", 0.5).
		Param("k_xz", 0.5).
		Param("k_yz", 0.5).
		Param("beta_y", 1.0).
		Param("beta_z", 1.0).
		Param("gamma_y", 0.1).
		Param("gamma_z", 0.1).
		Param("n_xy", 2).
		Param("n_xz", 2).
		Param("n_yz", 2).
		Channel(ssa.NewChannel("y_production").HillActivation("beta_y", "k_xy", "n_xy").Input("x").Produces("Y", 1)).
		Channel(ssa.NewChannel("y_degradation").MassAction("gamma_y").Consumes("Y", 1)).
		Channel(ssa.NewChannel("z_production_by_x").HillActivation("beta_z", "k_xz", "n_xz").Input("x").Produces("Z", 1)).
		Channel(ssa.NewChannel("z_production_by_y").HillActivation("beta_z", "k_yz", "n_yz").Regulator("Y").Produces("Z", 1)).
		Channel(ssa.NewChannel("z_degradation").MassAction("gamma_z").Consumes("Z", 1))
}

func IncoherentFeedForwardLoop() *ssa.NetworkBuilder {
	return ssa.NewNetworkBuilder("incoherent_feed_forward_loop").
		Species("X", "activator").
		Species("Y", "dosage-compensated output").
		Param("beta_x", 0.1).
		Param("gamma_x", 0.05).
		Param("beta_y", 0.1).
		Param("gamma_y", 0.05).
		Param("k", 1.0).
		Param("n", 2).
		Channel(ssa.NewChannel("x_production").MassAction("beta_x").Produces("X", 1)).
		Channel(ssa.NewChannel("x_degradation").MassAction("gamma_x").Consumes("X", 1)).
		Channel(ssa.NewChannel("y_production").HillRepression("beta_y", "k", "n").Regulator("X").Produces("Y", 1)).
		Channel(ssa.NewChannel("y_degradation").MassAction("gamma_y").Consumes("Y", 1))
}

// dichotomousSpecies declares the shared species of both two-component
// networks in state order.
func dichotomousSpecies(nb *ssa.NetworkBuilder) *ssa.NetworkBuilder {
	return nb.
		Species("HK", "histidine kinase").
		Species("HKp", "phosphorylated kinase").
		Species("RR", "response regulator").
		Species("RRp", "phosphorylated response regulator").
		Species("SR", "secondary regulator").
		Species("SRp", "phosphorylated secondary regulator").
		Species("PH", "phosphatase").
		Species("Output", "reporter").
		Param("beta_hk", 1.0).
		Param("beta_rr", 1.0).
		Param("beta_sr", 1.0).
		Param("beta_ph", 1.0).
		Param("delta", 0.1).
		Param("kap_max", 1.0).
		Param("k_da", 1.0).
		Param("k_t", 0.1).
		Param("k_tc", 0.1).
		Param("k_p", 0.1).
		Param("k_pc", 0.1).
		Param("kout_max", 1.0).
		Param("k_dr", 1.0).
		Param("n", 2).
		Param("I", 1.0)
}

// DichotomousFeedback is the eight-channel two-component network: HK is
// produced, degraded and autophosphorylated at a rate set by the inducer I;
// HKp passes its phosphate to RR and SR (which gate the transfer but are not
// consumed) and RRp drives the Output through a Hill law. HK and HKp are
// degraded by separate channels. RR and SR have no production channel here,
// so from the all-zero state the transfers and the Output never fire; seed
// RR or use DichotomousFeedbackFull.
func DichotomousFeedback() *ssa.NetworkBuilder {
	return dichotomousSpecies(ssa.NewNetworkBuilder("dichotomous_feedback")).
		Channel(ssa.NewChannel("hk_production").MassAction("beta_hk").Produces("HK", 1)).
		Channel(ssa.NewChannel("hk_degradation").MassAction("delta").Consumes("HK", 1)).
		Channel(ssa.NewChannel("hk_autophosphorylation").MichaelisMenten("kap_max", "k_da").Input("I").Consumes("HK", 1).Produces("HKp", 1)).
		Channel(ssa.NewChannel("phosphotransfer_rr").MassAction("k_t").Consumes("HKp", 1).Requires("RR", 1).Produces("RRp", 1)).
		Channel(ssa.NewChannel("phosphotransfer_sr").MassAction("k_tc").Consumes("HKp", 1).Requires("SR", 1).Produces("SRp", 1)).
		Channel(ssa.NewChannel("output_production").HillActivation("kout_max", "k_dr", "n").Regulator("RRp").Produces("Output", 1)).
		Channel(ssa.NewChannel("output_degradation").MassAction("delta").Consumes("Output", 1)).
		Channel(ssa.NewChannel("hkp_degradation").MassAction("delta").Consumes("HKp", 1))
}

// DichotomousFeedbackFull adds regulator and phosphatase turnover to the
// two-component system. Phosphotransfer returns HKp to HK and converts RR to
// RRp; HK and PH dephosphorylate the regulators.
func DichotomousFeedbackFull() *ssa.NetworkBuilder {
	return dichotomousSpecies(ssa.NewNetworkBuilder("dichotomous_feedback_full")).
		Channel(ssa.NewChannel("hk_production").MassAction("beta_hk").Produces("HK", 1)).
		Channel(ssa.NewChannel("hk_degradation").MassAction("delta").Consumes("HK", 1)).
		Channel(ssa.NewChannel("hk_autophosphorylation").MichaelisMenten("kap_max", "k_da").Input("I").Consumes("HK", 1).Produces("HKp", 1)).
		Channel(ssa.NewChannel("phosphotransfer_rr").MassAction("k_t").Consumes("HKp", 1).Consumes("RR", 1).Produces("HK", 1).Produces("RRp", 1)).
		Channel(ssa.NewChannel("phosphotransfer_sr").MassAction("k_tc").Consumes("HKp", 1).Consumes("SR", 1).Produces("HK", 1).Produces("SRp", 1)).
		Channel(ssa.NewChannel("hkp_degradation").MassAction("delta").Consumes("HKp", 1)).
		Channel(ssa.NewChannel("rr_production").MassAction("beta_rr").Produces("RR", 1)).
		Channel(ssa.NewChannel("rr_degradation").MassAction("delta").Consumes("RR", 1)).
		Channel(ssa.NewChannel("rrp_dephosphorylation_hk").MassAction("k_p").Requires("HK", 1).Consumes("RRp", 1).Produces("RR", 1)).
		Channel(ssa.NewChannel("rrp_dephosphorylation_ph").MassAction("k_pc").Requires("PH", 1).Consumes("RRp", 1).Produces("RR", 1)).
		Channel(ssa.NewChannel("rrp_degradation").MassAction("delta").Consumes("RRp", 1)).
		Channel(ssa.NewChannel("sr_production").MassAction("beta_sr").Produces("SR", 1)).
		Channel(ssa.NewChannel("sr_degradation").MassAction("delta").Consumes("SR", 1)).
		Channel(ssa.NewChannel("srp_dephosphorylation_hk").MassAction("k_pc").Requires("HK", 1).Consumes("SRp", 1).Produces("SR", 1)).
		Channel(ssa.NewChannel("srp_degradation").MassAction("delta").Consumes("SRp", 1)).
		Channel(ssa.NewChannel("ph_production").MassAction("beta_ph").Produces("PH", 1)).
		Channel(ssa.NewChannel("ph_degradation").MassAction("delta").Consumes("PH", 1)).
		Channel(ssa.NewChannel("output_production").HillActivation("kout_max", "k_dr", "n").Regulator("RRp").Produces("Output", 1)).
		Channel(ssa.NewChannel("output_degradation").MassAction("delta").Consumes("Output", 1))
}
