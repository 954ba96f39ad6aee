package slip

func ptr[T any](v T) *T { return &v }

const t4Text = `Canada Revenue Agency          T4 2024
Statement of Remuneration Paid / État de la rémunération payée
Employer's name - Nom de l'employeur
Maple Leaf Foods Inc.
Employer's account number / Numéro de compte de l'employeur 54 123456789RP0001
Social insurance number / Numéro d'assurance sociale 12 046 454 286
Employment income / Revenus d'emploi 14 50,000.00
Employee's CPP contributions / Cotisations de l'employé au RPC 16 2,898.00
Employee's EI premiums / Cotisations de l'employé à l'AE 18 790.00
Income tax deducted / Impôt sur le revenu retenu 22 8,000.00
`

const releve1Text = `Relevé 1 - Revenus d'emploi et revenus divers
Année 2024
Nom de l'employeur: Bombardier Inc.
Numéro d'identification de l'employeur: 1234567890RS0001
Numéro d'assurance sociale 046 454 286
Case A - Revenus d'emploi 40 000,00
Case B - Cotisation au RRQ 2 500,00
Case E - Impôt du Québec retenu 3 500,00
Case H - Cotisation au RQAP 197,60
`

const t5Text = `T5 Statement of Investment Income / État des revenus de placement
Payer's name: Northern Trust Bank
Actual amount of eligible dividends 24 $1,000.00
Taxable amount of eligible dividends 25 $1,380.00
Interest from Canadian sources 13 $250.50
`

const unrecognizedText = `Grocery list
milk, eggs, bread
call the plumber on tuesday`

const medicalText = `Shoppers Drug Mart Pharmacy
Prescription receipt
Date: 2024-03-15
Description: Amoxicillin 500mg
Amount paid: $145.20
`

const donationText = `Official Donation Receipt for Income Tax Purposes
Charity name: Canadian Red Cross
Registration number: 119219814RR0001
Date of gift: 2024-12-01
Eligible amount of gift: $500.00
`

const expenseText = `Invoice
Vendor: Staples Business Depot
Category: Office supplies
Date: 2024-05-10
Total: $89.99
`

const t2202Text = `T2202 Tuition and Enrolment Certificate
Name of educational institution: University of Toronto
Student number: 1004567890
Eligible tuition fees 23 $6,850.00
Number of months part-time 24 2
Number of months full-time 26 8
`
