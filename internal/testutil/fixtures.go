package testutil

// GaussianOptimization is a trimmed geometry optimisation of methane.  The
// Mulliken block is printed twice; the final block holds four atoms with
// charges -0.421, 0.140333, 0.140333, 0.140334.  The optimized parameters
// are R1=1.0935, R2=1.0936, A1=109.4712, D1=-120.0 and one linear bend L1
// that carries no bond/angle/torsion marker.
const GaussianOptimization = ` Entering Link 1 = C:\G09W\l1.exe PID=      4120.
 #p opt b3lyp/6-31g(d)

 Mulliken atomic charges:
              1
     1  C   -0.500000
     2  H    0.500000
 Sum of Mulliken atomic charges =   0.00000
 Berny optimization.
 Step number   2 out of a maximum of   20

                           ----------------------------
                           !   Optimized Parameters   !
                           ! (Angstroms and Degrees)  !
 --------------------------                            --------------------------
 ! Name  Definition              Value          Derivative Info.                !
 --------------------------------------------------------------------------------
 ! R1    R(1,2)                  1.0935         -DE/DX =    0.0                 !
 ! R2    R(1,3)                  1.0936         -DE/DX =    0.0                 !
 ! A1    A(2,1,3)              109.4712         -DE/DX =    0.0                 !
 ! D1    D(4,1,2,3)           -120.0            -DE/DX =    0.0                 !
 ! L1    L(1,2,3,-1)           180.0            -DE/DX =    0.0                 !
 --------------------------------------------------------------------------------
 GradGradGradGradGradGradGradGradGradGradGradGradGradGradGradGradGradGrad

 Mulliken atomic charges:
              1
     1  C   -0.421000
     2  H    0.140333
     3  H    0.140333
     4  H    0.140334
 Sum of Mulliken atomic charges =   0.00000
 Normal termination of Gaussian 09.
`

// GaussianSinglePoint has a Mulliken block but no optimisation section.
const GaussianSinglePoint = ` #p sp hf/sto-3g

 Mulliken atomic charges:
              1
     1  O   -0.329000
     2  H    0.164500
     3  H    0.164500
 Sum of Mulliken atomic charges =   0.00000
 Normal termination of Gaussian 09.
`

// GaussianNoSections is a log with neither recognised section.
const GaussianNoSections = ` #p freq
 Error termination via Lnk1e.
`

// TessellateText is a plain-text pucker log with a three-token header.
const TessellateText = `tessellate 0.4 txt
1 ('3E', foo)
2 ('3E', bar)
3 (OE, baz)
`

// TessellateJSONPDB is a structured pucker log derived from structure files,
// so it is parsed in stratified mode.
const TessellateJSONPDB = `tessellate 0.4 json pdb
[
  {"conformer": "3E", "ringsize": 5, "numeric": 1, "pdbid": "A"},
  {"conformer": "3E", "ringsize": 5, "numeric": 2, "pdbid": "A"}
]
`

// TessellateJSONTrajectory is a structured log from a trajectory: mixed ring
// sizes, one record with an unknown ring size and one without a label.
const TessellateJSONTrajectory = `tessellate 0.4 json xtc
[
  {"conformer": "4C1", "ringsize": 6, "numeric": 12.0, "pdbid": "frame1"},
  {"conformer": "2T3", "ringsize": "5", "numeric": 3, "pdbid": "frame1"},
  {"conformer": "1C4", "ringsize": 6, "numeric": 13, "pdbid": "frame2"},
  {"conformer": "TCC", "ringsize": "macro", "numeric": 40, "pdbid": "frame2"},
  {"conformer": "3E", "ringsize": 4, "numeric": 1, "pdbid": "frame3"},
  {"ringsize": 6, "numeric": 1, "pdbid": "frame3"}
]
`

// TessellateFiveTokenHeader has a header that matches no known shape.
const TessellateFiveTokenHeader = `tessellate 0.4 json pdb extra
[{"conformer": "3E", "ringsize": 5, "numeric": 1, "pdbid": "A"}]
`

// TesselateLegacy is the headerless plain-text format of older releases.
const TesselateLegacy = `1 ('3E', foo)
2 ('3E', bar)
3 (OE, baz)
`

//Personal.AI order the ending
